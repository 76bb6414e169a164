package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ssargent/osubuf/pkg/layout"
	"github.com/ssargent/osubuf/pkg/storage"
)

const maxHexPreview = 32

// outputJSON writes v as indented JSON
func outputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputRecords displays decoded records
func outputRecords(w io.Writer, format string, recs []*layout.Record) error {
	if format == "json" {
		return outputJSON(w, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No records decoded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	for i, rec := range recs {
		if len(recs) > 1 {
			fmt.Fprintf(tw, "# record %d (%d bytes)\n", i, rec.Size)
		}
		fmt.Fprintln(tw, "FIELD\tTYPE\tVALUE")
		for _, v := range rec.Values {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.Type, formatValue(v.Value))
		}
	}
	return nil
}

// outputLayouts displays registered layouts
func outputLayouts(w io.Writer, format string, layouts []layout.Layout) error {
	if format == "json" {
		return outputJSON(w, layouts)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tFIELDS\tMIN SIZE\tDESCRIPTION")
	for _, l := range layouts {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", l.Name, len(l.Fields), l.MinSize(), l.Description)
	}
	return nil
}

// outputLayout displays the fields of one layout
func outputLayout(w io.Writer, format string, l layout.Layout) error {
	if format == "json" {
		return outputJSON(w, l)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Name:\t%s\n", l.Name)
	if l.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", l.Description)
	}
	fmt.Fprintln(tw, "FIELD\tTYPE\tLENGTH\tNULLABLE")
	for _, f := range l.Fields {
		length := ""
		if f.Length > 0 {
			length = fmt.Sprint(f.Length)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", f.Name, f.Type, length, f.Nullable)
	}
	return nil
}

type entryView struct {
	ID       string    `json:"id"`
	Layout   string    `json:"layout"`
	Captured time.Time `json:"captured"`
	Size     int       `json:"size"`
}

func viewOf(e storage.Entry) entryView {
	return entryView{ID: e.ID.String(), Layout: e.Layout, Captured: e.Captured, Size: e.Size}
}

// outputEntries displays archive entries
func outputEntries(w io.Writer, format string, entries []storage.Entry) error {
	if format == "json" {
		views := make([]entryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, viewOf(e))
		}
		return outputJSON(w, views)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No archive entries found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tLAYOUT\tSIZE\tCAPTURED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.ID, e.Layout, e.Size, e.Captured.Format(time.RFC3339))
	}
	return nil
}

// formatValue renders a decoded field value for table output
func formatValue(v any) string {
	switch x := v.(type) {
	case *string:
		if x == nil {
			return "<absent>"
		}
		return fmt.Sprintf("%q", *x)
	case string:
		return fmt.Sprintf("%q", x)
	case []byte:
		if len(x) > maxHexPreview {
			return fmt.Sprintf("%s... (%d bytes)", hex.EncodeToString(x[:maxHexPreview]), len(x))
		}
		return hex.EncodeToString(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []int32:
		return formatSlice(x)
	case []layout.Pair:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprintf("%d=%g", p.Key, p.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(x)
	}
}

func formatSlice[T any](s []T) string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = fmt.Sprint(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
