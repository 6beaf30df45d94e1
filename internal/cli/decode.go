package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sharekeeper/internal/output"
	"sharekeeper/internal/parse"
	"sharekeeper/internal/shareinfo"
)

var (
	decodeBase    string
	decodeAddr    string
	decodeCount   int
	decodePtrSize int
)

var decodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "Decode SHARE_INFO_1 records from a raw memory image",
	Long: `decode reads FILE as a snapshot of process memory mapped at --base and
decodes --count consecutive SHARE_INFO_1 structures starting at --addr.
Strings are read with the configured --encoding.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		if err := parse.ValidatePointerSize(decodePtrSize); err != nil {
			return err
		}
		if decodeCount < 1 {
			return fmt.Errorf("invalid --count: must be at least 1")
		}
		base, err := parse.ParseAddress(decodeBase)
		if err != nil {
			return err
		}
		addr := base
		if decodeAddr != "" {
			if addr, err = parse.ParseAddress(decodeAddr); err != nil {
				return err
			}
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		dec, err := shareinfo.NewDecoder(decodePtrSize, cfg.TextEncoding())
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"image":    args[0],
			"base":     fmt.Sprintf("0x%x", base),
			"addr":     fmt.Sprintf("0x%x", addr),
			"encoding": cfg.TextEncoding().String(),
		}).Debug("decoding image")

		records, err := dec.DecodeArray(&shareinfo.Image{Base: base, Data: data}, addr, decodeCount)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", args[0], err)
		}
		return output.Print(cmd.OutOrStdout(), format, output.NewShareList(records))
	},
}

func init() {
	f := decodeCmd.Flags()
	f.StringVar(&decodeBase, "base", "0", "address the first byte of FILE was mapped at")
	f.StringVar(&decodeAddr, "addr", "", "address of the first record (default: --base)")
	f.IntVar(&decodeCount, "count", 1, "number of consecutive records")
	f.IntVar(&decodePtrSize, "ptr-size", 8, "pointer width of the image in bytes: 4 or 8")
}
