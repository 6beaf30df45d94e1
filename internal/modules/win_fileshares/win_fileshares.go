package win_fileshares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sharekeeper/internal/netapi"
	"sharekeeper/internal/parse"
	"sharekeeper/internal/shareinfo"
	"sharekeeper/internal/winutil"
)

// Lister enumerates the shares of one host.
type Lister interface {
	Enumerate(ctx context.Context) ([]shareinfo.ShareRecord, error)
}

// errNoFallback marks platforms without a command-line share listing.
var errNoFallback = errors.New("no command-line share listing on this platform")

// WinFileShares represents the Windows file shares collection module.
type WinFileShares struct {
	server   string
	lister   Lister
	filter   *parse.TypeFilter
	now      func() time.Time
	fallback func(ctx context.Context, server string) ([]byte, error)

	found int
}

// Option configures a WinFileShares module.
type Option func(*WinFileShares)

// WithServer targets a remote host instead of the local computer.
func WithServer(server string) Option {
	return func(w *WinFileShares) {
		w.server = server
		w.lister = netapi.NewEnumerator(server)
	}
}

// WithLister replaces the netapi enumerator.
func WithLister(l Lister) Option {
	return func(w *WinFileShares) { w.lister = l }
}

// WithFilter keeps only records that pass f.
func WithFilter(f *parse.TypeFilter) Option {
	return func(w *WinFileShares) { w.filter = f }
}

// NewWinFileShares creates a new Windows file shares collection module.
func NewWinFileShares(opts ...Option) *WinFileShares {
	w := &WinFileShares{
		lister:   netapi.NewEnumerator(""),
		now:      time.Now,
		fallback: netShareOutput,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Name returns the module's identifier.
func (w *WinFileShares) Name() string {
	return "windows/fileshares"
}

// SharesFound returns how many shares the last Collect wrote out.
func (w *WinFileShares) SharesFound() int {
	return w.found
}

// shareEntry is one element of shares.json.
type shareEntry struct {
	Name     string   `json:"name"`
	Type     uint32   `json:"share_type"`
	TypeName string   `json:"type_name"`
	Flags    []string `json:"flags"`
	Special  bool     `json:"special"`
	Remark   string   `json:"remark"`
}

// Collect enumerates shares and writes shares.json, shares_ndr.bin, the
// command-line listing where available, and manifest.json. Step failures are
// recorded in the manifest; a failed enumeration also fails the module.
func (w *WinFileShares) Collect(ctx context.Context, outDir string) error {
	if err := winutil.EnsureDir(outDir); err != nil {
		return fmt.Errorf("failed to create fileshares directory: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	manifest := NewFileShareManifest(hostname, w.server, w.now())

	records, enumErr := w.lister.Enumerate(ctx)
	if enumErr != nil {
		manifest.AddError("NetShareEnum", enumErr.Error())
	} else {
		manifest.SharesEnumerated = len(records)
		records = w.filter.Apply(records)
		manifest.SharesFound = len(records)
		w.found = len(records)

		if err := w.writeJSON(outDir, records, manifest); err != nil {
			manifest.AddError("shares.json", err.Error())
		}
		if err := w.writeArtifact(outDir, "shares_ndr.bin", shareinfo.MarshalNDR(records), "shares_ndr", "NetrShareEnum level 1 response stub", manifest); err != nil {
			manifest.AddError("shares_ndr.bin", err.Error())
		}
	}

	switch out, err := w.fallback(ctx, w.server); {
	case errors.Is(err, errNoFallback):
	case err != nil:
		manifest.AddError("net share", err.Error())
	default:
		if err := w.writeArtifact(outDir, "net_share.txt", out, "net_share", "Command-line share listing", manifest); err != nil {
			manifest.AddError("net_share.txt", err.Error())
		}
	}

	if err := manifest.WriteManifest(filepath.Join(outDir, "manifest.json")); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if enumErr != nil {
		return fmt.Errorf("failed to enumerate shares: %w", enumErr)
	}
	return nil
}

func (w *WinFileShares) writeJSON(outDir string, records []shareinfo.ShareRecord, manifest *FileShareManifest) error {
	entries := make([]shareEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, shareEntry{
			Name:     r.Name,
			Type:     uint32(r.Type),
			TypeName: r.Type.String(),
			Flags:    r.Type.Flags(),
			Special:  r.Type.IsSpecial(),
			Remark:   r.Remark,
		})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return w.writeArtifact(outDir, "shares.json", data, "shares_json", "Shares reported by NetShareEnum level 1", manifest)
}

func (w *WinFileShares) writeArtifact(outDir, name string, data []byte, fileType, note string, manifest *FileShareManifest) error {
	size, sum, err := winutil.WriteFileHashed(filepath.Join(outDir, name), data)
	if err != nil {
		return err
	}
	manifest.AddItem(name, size, sum, w.now(), fileType, note)
	return nil
}
