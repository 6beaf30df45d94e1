package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sharekeeper/internal/core"
	"sharekeeper/internal/modules/win_fileshares"
	"sharekeeper/internal/parse"
	"sharekeeper/internal/schema"
)

var (
	encryptAge string
	out        string
	keepTmp    bool
)

// harvestCmd represents the harvest command.
var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Collect the share listing and package it securely",
	Long: `The harvest command enumerates the shares of the target host, writes
them with a hashed manifest, packages the result into a compressed archive,
and optionally encrypts it using age public key encryption.`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

func init() {
	f := harvestCmd.Flags()
	f.Int("parallel", 4, "maximum concurrent modules (1-64)")
	f.Duration("module-timeout", 60*time.Second, "per-module timeout")
	f.String("types", "", `share types to keep, e.g. "disk,ipc" or "disk,-special"`)
	f.StringVar(&encryptAge, "encrypt-age", "", "Age public key for encryption (must start with age1)")
	f.StringVar(&out, "out", "", "output directory for final archive (default: temp directory)")
	f.BoolVar(&keepTmp, "keep-tmp", false, "keep temporary artifacts directory for debugging")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := time.Now()

	// Validate age public key if provided
	ageRecipientSet, err := parse.ValidateAgeKey(encryptAge)
	if err != nil {
		return err
	}
	if ageRecipientSet {
		if err := core.ValidateAgePublicKey(encryptAge); err != nil {
			return fmt.Errorf("invalid --encrypt-age: %w", err)
		}
	}

	// Archive is named after the target, or this host when collecting locally
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if cfg.Server != "" {
		hostname = cfg.Server
	}

	// Create temporary artifacts directory
	artifactsDir, err := core.CreateTempDir()
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}

	// Determine output directory for final archive
	var outDir string
	if out == "" {
		// Use the parent directory of artifacts to avoid including archive in itself
		outDir = filepath.Dir(artifactsDir)
		logger.Infof("Using temporary output directory: %s", outDir)
	} else {
		if outDir, err = filepath.Abs(out); err != nil {
			return fmt.Errorf("failed to resolve output directory: %w", err)
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Set up cleanup of temp directory unless --keep-tmp is set
	if !keepTmp {
		defer func() {
			if err := core.RemoveTempDir(artifactsDir); err != nil {
				logger.WithError(err).Warnf("failed to clean up temporary directory %s", artifactsDir)
			}
		}()
	}

	// Create run orchestrator
	log := logrus.NewEntry(logger).WithField("server", cfg.Server)
	run := core.NewRun(cfg.Parallel, cfg.ModuleTimeout, artifactsDir, core.SystemClock{}, log)

	// Register the share module
	shares := win_fileshares.NewWinFileShares(
		win_fileshares.WithServer(cfg.Server),
		win_fileshares.WithLister(newShareSource(cfg.Server)),
		win_fileshares.WithFilter(cfg.Filter()),
	)
	run.Register(shares)

	log.Infof("Starting collection with %d modules, %d parallel, %s timeout",
		len(run.Modules()), cfg.Parallel, cfg.ModuleTimeout)

	// Execute all modules
	results, collectErr := run.CollectAll(ctx)
	if collectErr != nil {
		log.WithError(collectErr).Warn("Collection completed with errors")
	} else {
		log.Info("Collection completed successfully")
	}

	// Bundle and optionally encrypt the artifacts
	log.Debug("Creating archive")
	pkg, err := core.BundleAndMaybeEncrypt(ctx, artifactsDir, outDir, hostname, now, encryptAge)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	log.WithField("archive", pkg.Path).Info("Archive created")

	// Build output structure
	finalArtifactsDir := artifactsDir
	if !keepTmp {
		finalArtifactsDir = "" // Indicate it was removed
	}

	report := schema.NewRunOutput(schema.RunParams{
		Server:          cfg.Server,
		AgeRecipientSet: ageRecipientSet,
		Parallelism:     cfg.Parallel,
		ModuleTimeout:   cfg.ModuleTimeout,
		Types:           cfg.Types,
	}, finalArtifactsDir, pkg, run.Modules(), results, shares.SharesFound(), now)

	// Marshal and output JSON with pretty formatting
	jsonBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))

	// Return collection error as the command result, if any
	return collectErr
}
