package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/codec"
	"github.com/ssargent/osubuf/pkg/layout"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		all    bool
		hexIn  bool
		offset int
	)

	decodeCmd := &cobra.Command{
		Use:   "decode <layout> [file|-]",
		Short: "Decode a binary record",
		Long: `Decode a binary record using a registered layout.

The input is read from the named file or from stdin. With --all, records
are decoded back to back until the input is exhausted.

Examples:
  osubuf decode osr-header replay.osr
  cat scores.bin | osubuf decode score-entry --all -o json
  echo "0b0568656c6c6f" | osubuf decode my-layout --hex`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.layout(args[0])
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			data, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}
			if hexIn {
				if data, err = decodeHex(data); err != nil {
					return err
				}
			}

			r := codec.NewReader(data)
			if offset > 0 {
				if err := r.Cursor().Seek(offset); err != nil {
					return err
				}
			}

			var recs []*layout.Record
			if all {
				recs, err = layout.DecodeAll(r, l)
			} else {
				var rec *layout.Record
				rec, err = layout.Decode(r, l)
				if rec != nil {
					recs = append(recs, rec)
				}
			}
			if err != nil {
				return err
			}

			a.logger.Debug("decoded payload",
				zap.String("layout", l.Name),
				zap.Int("records", len(recs)),
				zap.Int("remaining", r.Cursor().Remaining()))

			if err := outputRecords(cmd.OutOrStdout(), a.output, recs); err != nil {
				return err
			}
			if rem := r.Cursor().Remaining(); rem > 0 && a.output != "json" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d trailing bytes not decoded\n", rem)
			}
			return nil
		},
	}

	decodeCmd.Flags().BoolVar(&all, "all", false, "Decode records until the input is exhausted")
	decodeCmd.Flags().BoolVar(&hexIn, "hex", false, "Input is hex text")
	decodeCmd.Flags().IntVar(&offset, "offset", 0, "Byte offset to start decoding at")
	return decodeCmd
}

// layout resolves a registered layout, applying the nullable-string setting.
func (a *app) layout(name string) (layout.Layout, error) {
	l, err := a.layouts.Get(name)
	if err != nil {
		return layout.Layout{}, err
	}
	if a.cfg.Codec.NullableStrings {
		l = l.WithNullableStrings()
	}
	return l, nil
}
