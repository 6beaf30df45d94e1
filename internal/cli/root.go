// Package cli provides command-line interface implementation for sharekeeper.
package cli

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sharekeeper/internal/config"
	"sharekeeper/internal/netapi"
	"sharekeeper/internal/shareinfo"
)

var (
	configFile string
	cfg        *config.Config
	logger     = logrus.New()
)

// shareSource is what list and get need from netapi.
type shareSource interface {
	Enumerate(ctx context.Context) ([]shareinfo.ShareRecord, error)
	GetInfo(ctx context.Context, name string) (shareinfo.ShareRecord, error)
}

// newShareSource is replaced in tests.
var newShareSource = func(server string) shareSource {
	return netapi.NewEnumerator(server)
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sharekeeper",
	Short: "Enumerate and collect Windows network shares",
	Long: `sharekeeper lists the shares of a Windows host through NetShareEnum,
decodes SHARE_INFO_1 records from raw memory images, and packages share
listings into optionally age-encrypted evidence archives.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetLevel(cfg.Level())
		logrus.SetOutput(cmd.ErrOrStderr())
		logrus.SetLevel(cfg.Level())
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Show help and exit 0 if no subcommand is provided
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("encoding", "utf16", "string encoding of raw SHARE_INFO_1 data: utf16 or ansi")
	pf.String("server", "", `target host, e.g. fileserver01 or \\fileserver01 (default: local computer)`)

	rootCmd.AddCommand(listCmd, getCmd, decodeCmd, harvestCmd)
}
