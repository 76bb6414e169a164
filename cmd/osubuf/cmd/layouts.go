package cmd

import (
	"github.com/spf13/cobra"
)

func newLayoutsCmd(a *app) *cobra.Command {
	layoutsCmd := &cobra.Command{
		Use:   "layouts",
		Short: "List registered record layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputLayouts(cmd.OutOrStdout(), a.output, a.layouts.All())
		},
	}

	layoutsCmd.AddCommand(&cobra.Command{
		Use:   "show <layout>",
		Short: "Show the fields of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.layout(args[0])
			if err != nil {
				return err
			}
			return outputLayout(cmd.OutOrStdout(), a.output, l)
		},
	})

	return layoutsCmd
}
