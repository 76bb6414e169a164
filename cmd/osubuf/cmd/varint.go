package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/osubuf/pkg/codec"
)

func newVarintCmd() *cobra.Command {
	varintCmd := &cobra.Command{
		Use:   "varint",
		Short: "Encode and decode LEB128 variable-length integers",
	}

	varintCmd.AddCommand(&cobra.Command{
		Use:     "encode <value>",
		Short:   "Print the varint bytes of an unsigned integer",
		Example: "  osubuf varint encode 300   # ac02",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 0, 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[0], err)
			}
			w := codec.NewWriter()
			if err := w.WriteVarint(v); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(w.Bytes()))
			return nil
		},
	})

	varintCmd.AddCommand(&cobra.Command{
		Use:     "decode <hex>",
		Short:   "Decode varint bytes given as hex",
		Example: "  osubuf varint decode ac02   # 300 (2 bytes)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeHex([]byte(args[0]))
			if err != nil {
				return err
			}
			r := codec.NewReader(data)
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d (%d bytes)\n", v, r.Cursor().Position())
			return nil
		},
	})

	return varintCmd
}
