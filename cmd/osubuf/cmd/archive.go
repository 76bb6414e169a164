package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/api"
	"github.com/ssargent/osubuf/pkg/codec"
	"github.com/ssargent/osubuf/pkg/layout"
)

func (a *app) archiveFactory() api.ArchiveFactory {
	if container == nil {
		return api.NewArchiveFactory()
	}
	return container.GetArchiveFactory()
}

// withArchive opens the archive for the duration of fn.
func (a *app) withArchive(fn func(api.ArchiveStore) error) (err error) {
	archive, err := a.archiveFactory().OpenArchive(a.cfg.DataDir, a.logger)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		if cerr := archive.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(archive)
}

func parseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, errors.Wrapf(err, "invalid archive id %q", s)
	}
	return id, nil
}

func newArchiveCmd(a *app) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Store and retrieve raw payloads",
		Long: `Manage the payload archive under the data directory.

Payloads are validated against their layout before they are stored and
are kept byte for byte. Entries are listed in capture order.`,
	}

	var hexIn bool
	putCmd := &cobra.Command{
		Use:   "put <layout> [file|-]",
		Short: "Validate and archive a payload",
		Args:  cobra.RangeArgs(1, 2),
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
			if _, err := layout.Decode(codec.NewReader(data), l); err != nil {
				return err
			}

			return a.withArchive(func(archive api.ArchiveStore) error {
				id, err := archive.Put(l.Name, data)
				if err != nil {
					return err
				}
				a.logger.Info("payload archived",
					zap.String("id", id.String()),
					zap.String("layout", l.Name),
					zap.Int("size", len(data)))
				fmt.Fprintln(cmd.OutOrStdout(), id.String())
				return nil
			})
		},
	}
	putCmd.Flags().BoolVar(&hexIn, "hex", false, "Input is hex text")

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withArchive(func(archive api.ArchiveStore) error {
				entries, err := archive.List(limit)
				if err != nil {
					return err
				}
				return outputEntries(cmd.OutOrStdout(), a.output, entries)
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries (0 for all)")

	var raw bool
	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Decode an archived payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withArchive(func(archive api.ArchiveStore) error {
				entry, err := archive.Get(id)
				if err != nil {
					return err
				}
				if raw {
					_, err := cmd.OutOrStdout().Write(entry.Payload)
					return err
				}
				l, err := a.layout(entry.Layout)
				if err != nil {
					return err
				}
				rec, err := layout.Decode(codec.NewReader(entry.Payload), l)
				if err != nil {
					return err
				}
				return outputRecords(cmd.OutOrStdout(), a.output, []*layout.Record{rec})
			})
		},
	}
	getCmd.Flags().BoolVar(&raw, "raw", false, "Write the stored bytes instead of decoding them")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withArchive(func(archive api.ArchiveStore) error {
				if err := archive.Delete(id); err != nil {
					return err
				}
				cmd.Printf("Deleted %s\n", id)
				return nil
			})
		},
	}

	archiveCmd.AddCommand(putCmd, listCmd, getCmd, deleteCmd)
	return archiveCmd
}
