// Package win_fileshares provides Windows file share collection for sharekeeper.
package win_fileshares

import (
	"encoding/json"
	"os"
	"time"
)

// FileShareItem represents a collected file share artifact.
type FileShareItem struct {
	Path     string `json:"path"`           // Relative path in the archive
	Size     int64  `json:"size"`           // File size in bytes
	SHA256   string `json:"sha256"`         // SHA-256 hash
	Note     string `json:"note,omitempty"` // Description of the file
	Modified string `json:"modified"`       // File modification time (RFC3339)
	FileType string `json:"file_type"`      // Type: "shares_json", "shares_ndr", "net_share"
}

// FileShareError represents an error that occurred during collection.
type FileShareError struct {
	Target string `json:"target"` // What failed (e.g. NetShareEnum, net share)
	Error  string `json:"error"`  // Error message
}

// FileShareManifest represents the complete manifest for file shares collection.
type FileShareManifest struct {
	CreatedUTC         string           `json:"created_utc"`
	Host               string           `json:"host"`
	Server             string           `json:"server,omitempty"`
	SharekeeperVersion string           `json:"sharekeeper_version"`
	Items              []FileShareItem  `json:"items"`
	Errors             []FileShareError `json:"errors"`
	CollectedFiles     int              `json:"collected_files"`
	SharesEnumerated   int              `json:"shares_enumerated"`
	SharesFound        int              `json:"shares_found"`
}

// Version is stamped into every manifest.
const Version = "v0.2.0"

// NewFileShareManifest creates a new file share manifest with basic information.
func NewFileShareManifest(hostname, server string, now time.Time) *FileShareManifest {
	return &FileShareManifest{
		CreatedUTC:         now.UTC().Format(time.RFC3339),
		Host:               hostname,
		Server:             server,
		SharekeeperVersion: Version,
		Items:              make([]FileShareItem, 0),
		Errors:             make([]FileShareError, 0),
	}
}

// AddItem records a successfully written artifact.
func (fsm *FileShareManifest) AddItem(path string, size int64, sha256 string, modified time.Time, fileType, note string) {
	fsm.Items = append(fsm.Items, FileShareItem{
		Path:     path,
		Size:     size,
		SHA256:   sha256,
		Note:     note,
		Modified: modified.UTC().Format(time.RFC3339),
		FileType: fileType,
	})
	fsm.CollectedFiles++
}

// AddError adds an error to the manifest for a failed collection step.
func (fsm *FileShareManifest) AddError(target, errorMsg string) {
	fsm.Errors = append(fsm.Errors, FileShareError{
		Target: target,
		Error:  errorMsg,
	})
}

// WriteManifest writes the manifest to a JSON file.
func (fsm *FileShareManifest) WriteManifest(manifestPath string) error {
	data, err := json.MarshalIndent(fsm, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(manifestPath, data, 0644)
}
