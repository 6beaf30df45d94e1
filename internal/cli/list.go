package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sharekeeper/internal/netapi"
	"sharekeeper/internal/output"
	"sharekeeper/internal/shareinfo"
)

var outputFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the shares of a host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		records, err := newShareSource(cfg.Server).Enumerate(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to enumerate shares: %w", err)
		}
		records = cfg.Filter().Apply(records)
		logger.WithField("shares", len(records)).Debug("enumeration complete")
		return output.Print(cmd.OutOrStdout(), format, output.NewShareList(records))
	},
}

var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Show a single share",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		r, err := newShareSource(cfg.Server).GetInfo(cmd.Context(), args[0])
		if errors.Is(err, netapi.ErrShareNotFound) {
			return fmt.Errorf("share %q does not exist", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to query share %q: %w", args[0], err)
		}
		return output.Print(cmd.OutOrStdout(), format, output.NewShareList([]shareinfo.ShareRecord{r}))
	},
}

func init() {
	for _, c := range []*cobra.Command{listCmd, getCmd, decodeCmd} {
		c.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	}
	listCmd.Flags().String("types", "", `share types to keep, e.g. "disk,ipc" or "disk,-special"`)
}
