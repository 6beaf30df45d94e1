// Package core provides bundling and encryption functionality for sharekeeper artifacts.
package core

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filippo.io/age"
)

// PackageMetadata contains information about the created package.
type PackageMetadata struct {
	Path         string `json:"archive_path"`
	Encrypted    bool   `json:"encrypted"`
	FileCount    int    `json:"file_count"`
	BytesWritten int64  `json:"bytes_written"`
}

// ArchiveName returns the bundle file name for a host and collection time.
func ArchiveName(hostname string, timestamp time.Time, encrypted bool) string {
	name := fmt.Sprintf("sharekeeper_%s_%s.tar.gz", SanitizeName(hostname), timestamp.UTC().Format("20060102T150405Z"))
	if encrypted {
		name += ".age"
	}
	return name
}

// BundleAndMaybeEncrypt writes artifactsDir into a tar.gz under outDir, with
// every entry prefixed "artifacts/". When agePublicKey is set the gzip stream
// is encrypted to that X25519 recipient.
func BundleAndMaybeEncrypt(ctx context.Context, artifactsDir, outDir, hostname string, timestamp time.Time, agePublicKey string) (*PackageMetadata, error) {
	meta := &PackageMetadata{
		Path:      filepath.Join(outDir, ArchiveName(hostname, timestamp, agePublicKey != "")),
		Encrypted: agePublicKey != "",
	}

	f, err := os.Create(meta.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", meta.Path, err)
	}
	defer f.Close()

	// closers run innermost first: tar, gzip, then age.
	var sink io.Writer = f
	var closers []io.Closer
	if meta.Encrypted {
		recipient, err := age.ParseX25519Recipient(agePublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse age public key: %w", err)
		}
		enc, err := age.Encrypt(f, recipient)
		if err != nil {
			return nil, fmt.Errorf("failed to create age encryption writer: %w", err)
		}
		sink = enc
		closers = append(closers, enc)
	}
	gz := gzip.NewWriter(sink)
	tw := tar.NewWriter(gz)
	closers = append(closers, gz, tw)

	meta.FileCount, err = addTree(ctx, tw, artifactsDir, timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to walk artifacts directory: %w", err)
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			return nil, fmt.Errorf("failed to finish archive: %w", err)
		}
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}
	meta.BytesWritten = stat.Size()
	return meta, nil
}

// addTree streams every directory and regular file under root into tw and
// returns the number of files written.
func addTree(ctx context.Context, tw *tar.Writer, root string, timestamp time.Time) (int, error) {
	files := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to calculate relative path for %s: %w", path, err)
		}
		name := "artifacts/" + filepath.ToSlash(rel)

		if d.IsDir() {
			return tw.WriteHeader(&tar.Header{Name: name + "/", Mode: 0755, Typeflag: tar.TypeDir, ModTime: timestamp})
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := addFile(tw, path, name); err != nil {
			return err
		}
		files++
		return nil
	})
	return files, err
}

func addFile(tw *tar.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	hdr := &tar.Header{Name: name, Mode: 0644, Size: info.Size(), ModTime: info.ModTime()}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", path, err)
	}
	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("failed to copy file %s to archive: %w", path, err)
	}
	return nil
}

// ValidateAgePublicKey validates that a string is a valid age public key.
func ValidateAgePublicKey(key string) error {
	if !strings.HasPrefix(key, "age1") {
		return fmt.Errorf("age public key must start with 'age1'")
	}
	if _, err := age.ParseX25519Recipient(key); err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}
