package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharekeeper/internal/netapi"
	"sharekeeper/internal/output"
	"sharekeeper/internal/schema"
	"sharekeeper/internal/shareinfo"
)

type fakeSource struct {
	records []shareinfo.ShareRecord
}

func (f fakeSource) Enumerate(context.Context) ([]shareinfo.ShareRecord, error) {
	return f.records, nil
}

func (f fakeSource) GetInfo(_ context.Context, name string) (shareinfo.ShareRecord, error) {
	for _, r := range f.records {
		if r.Name == name {
			return r, nil
		}
	}
	return shareinfo.ShareRecord{}, errors.Wrapf(netapi.ErrShareNotFound, "NetShareGetInfo %s", name)
}

var testShares = []shareinfo.ShareRecord{
	shareinfo.New("ADMIN$", shareinfo.TypeDiskTree|shareinfo.FlagSpecial, "Remote Admin"),
	shareinfo.New("Public", shareinfo.TypeDiskTree, "Team drop box"),
	shareinfo.New("Laser", shareinfo.TypePrintQueue, "2nd floor"),
}

// execute runs the root command with an isolated config directory and a fake
// share source.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	prev := newShareSource
	newShareSource = func(string) shareSource { return fakeSource{records: testShares} }
	t.Cleanup(func() { newShareSource = prev })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func decodeShares(t *testing.T, s string) []output.Share {
	t.Helper()
	var got []output.Share
	require.NoError(t, json.Unmarshal([]byte(s), &got))
	return got
}

func TestListFiltersAndRenders(t *testing.T) {
	out, err := execute(t, "list", "--types", "disk,-special", "--output", "json")
	require.NoError(t, err)
	got := decodeShares(t, out)
	require.Len(t, got, 1)
	assert.Equal(t, "Public", got[0].Name)

	out, err = execute(t, "list", "--types", "", "--output", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "ADMIN$")
	assert.Contains(t, out, "PRINTQ")
}

func TestGet(t *testing.T) {
	out, err := execute(t, "get", "Laser", "--output", "json")
	require.NoError(t, err)
	got := decodeShares(t, out)
	require.Len(t, got, 1)
	assert.Equal(t, "2nd floor", got[0].Remark)

	_, err = execute(t, "get", "Missing", "--output", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `share "Missing" does not exist`)
}

func TestDecodeImage(t *testing.T) {
	enc, err := shareinfo.NewEncoder(4, shareinfo.EncodingANSI)
	require.NoError(t, err)
	img, err := enc.Encode(testShares[1:], 0x10000)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "mem.bin")
	require.NoError(t, os.WriteFile(path, img.Data, 0600))

	out, err := execute(t, "decode", path,
		"--base", "0x10000", "--addr", "0x10000", "--count", "2",
		"--ptr-size", "4", "--encoding", "ansi", "--output", "json")
	require.NoError(t, err)
	got := decodeShares(t, out)
	require.Len(t, got, 2)
	assert.Equal(t, "Public", got[0].Name)
	assert.Equal(t, "Laser", got[1].Name)
	assert.Equal(t, uint32(shareinfo.TypePrintQueue), got[1].Type)

	_, err = execute(t, "decode", path, "--base", "0x10000", "--addr", "0x20000",
		"--count", "1", "--ptr-size", "4", "--encoding", "ansi", "--output", "json")
	assert.ErrorIs(t, err, shareinfo.ErrInvalidAddress)

	_, err = execute(t, "decode", path, "--ptr-size", "2", "--output", "json")
	assert.Error(t, err)
}

func TestDecodeOversizedCount(t *testing.T) {
	enc, err := shareinfo.NewEncoder(8, shareinfo.EncodingUTF16)
	require.NoError(t, err)
	img, err := enc.Encode(testShares[:1], 0x2000)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "mem.bin")
	require.NoError(t, os.WriteFile(path, img.Data, 0600))

	for _, count := range []string{"2", "100000000", "4611686018427387904"} {
		_, err = execute(t, "decode", path, "--base", "0x2000", "--addr", "0x2000",
			"--count", count, "--ptr-size", "8", "--encoding", "utf16", "--output", "json")
		assert.ErrorIs(t, err, shareinfo.ErrInvalidAddress, "count %s", count)
	}

	_, err = execute(t, "decode", path, "--base", "0x2000", "--addr", "0x2000",
		"--count=-3", "--ptr-size", "8", "--output", "json")
	assert.Error(t, err)
}

func TestHarvestWritesArchive(t *testing.T) {
	outDir := t.TempDir()
	stdout, err := execute(t, "harvest", "--out", outDir, "--types", "", "--parallel", "2")
	require.NoError(t, err)

	var report schema.RunOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "harvest", report.Command)
	assert.Equal(t, []string{"windows/fileshares"}, report.ModulesRun)
	assert.Equal(t, 3, report.SharesFound)
	assert.Equal(t, 2, report.Parallelism)
	assert.False(t, report.Encrypted)
	require.Len(t, report.ModuleResults, 1)
	assert.True(t, report.ModuleResults[0].OK)
	assert.FileExists(t, report.ArchivePath)
	assert.Equal(t, outDir, filepath.Dir(report.ArchivePath))
}
