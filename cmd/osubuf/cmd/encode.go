package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/codec"
	"github.com/ssargent/osubuf/pkg/layout"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		out    string
		hexOut bool
	)

	encodeCmd := &cobra.Command{
		Use:   "encode <layout> [json-file|-]",
		Short: "Encode a JSON object into a binary record",
		Long: `Encode a JSON object of field values into a binary record.

Keys are field names. Timestamps accept RFC 3339 text or .NET ticks, byte
fields accept base64, and pair lists accept [{"key": k, "value": v}].

Examples:
  osubuf encode osr-header header.json --out header.bin
  echo '{"x": 1, "y": -2}' | osubuf encode point --hex`,
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

			var values map[string]any
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.UseNumber()
			if err := dec.Decode(&values); err != nil {
				return fmt.Errorf("invalid JSON input: %w", err)
			}

			w := codec.NewWriter()
			w.Cursor().SetLimit(a.cfg.Codec.MaxBufferSize)
			if err := layout.Encode(w, l, values); err != nil {
				return err
			}
			encoded := w.Bytes()

			a.logger.Debug("encoded record",
				zap.String("layout", l.Name),
				zap.Int("bytes", len(encoded)))

			if hexOut {
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(encoded))
				return nil
			}
			if out != "" {
				if err := os.WriteFile(out, encoded, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				cmd.Printf("Wrote %d bytes to %s\n", len(encoded), out)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(encoded)
			return err
		},
	}

	encodeCmd.Flags().StringVar(&out, "out", "", "Write the record to this file instead of stdout")
	encodeCmd.Flags().BoolVar(&hexOut, "hex", false, "Print the record as hex")
	return encodeCmd
}
