// Package schema defines the data structures for sharekeeper's output formats.
package schema

import (
	"time"

	"sharekeeper/internal/core"
)

// RunOutput represents the complete JSON output structure for a harvest command execution.
type RunOutput struct {
	Command         string        `json:"command"`
	Server          string        `json:"server"`
	ArtifactsDir    string        `json:"artifacts_dir"`
	ArchivePath     string        `json:"archive_path"`
	Encrypted       bool          `json:"encrypted"`
	AgeRecipientSet bool          `json:"age_recipient_set"`
	Parallelism     int           `json:"parallelism"`
	ModuleTimeout   string        `json:"module_timeout"`
	ModulesRun      []string      `json:"modules_run"`
	ModuleResults   []core.Result `json:"module_results"`
	SharesFound     int           `json:"shares_found"`
	FileCount       int           `json:"file_count"`
	BytesWritten    int64         `json:"bytes_written"`
	TimestampUTC    string        `json:"timestamp_utc"`

	// Set only when a type filter was applied.
	Types string `json:"types,omitempty"`
}

// RunParams are the invocation settings echoed back in RunOutput.
type RunParams struct {
	Server          string
	AgeRecipientSet bool
	Parallelism     int
	ModuleTimeout   time.Duration
	Types           string
}

// NewRunOutput assembles the harvest report. An empty artifactsDir means the
// temporary directory has been removed.
func NewRunOutput(
	params RunParams,
	artifactsDir string,
	pkg *core.PackageMetadata,
	modulesRun []string,
	moduleResults []core.Result,
	sharesFound int,
	timestamp time.Time,
) *RunOutput {
	out := &RunOutput{
		Command:         "harvest",
		Server:          params.Server,
		ArtifactsDir:    artifactsDir,
		AgeRecipientSet: params.AgeRecipientSet,
		Parallelism:     params.Parallelism,
		ModuleTimeout:   params.ModuleTimeout.String(),
		ModulesRun:      modulesRun,
		ModuleResults:   moduleResults,
		SharesFound:     sharesFound,
		TimestampUTC:    timestamp.UTC().Format(time.RFC3339),
		Types:           params.Types,
	}
	if out.Server == "" {
		out.Server = "localhost"
	}
	if pkg != nil {
		out.ArchivePath = pkg.Path
		out.Encrypted = pkg.Encrypted
		out.FileCount = pkg.FileCount
		out.BytesWritten = pkg.BytesWritten
	}
	return out
}
