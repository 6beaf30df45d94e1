package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	name    string
	err     error
	delay   time.Duration
	running *int32
	peak    *int32
}

func (m *fakeModule) Name() string { return m.name }

func (m *fakeModule) Collect(ctx context.Context, outDir string) error {
	if m.running != nil {
		n := atomic.AddInt32(m.running, 1)
		defer atomic.AddInt32(m.running, -1)
		for {
			p := atomic.LoadInt32(m.peak)
			if n <= p || atomic.CompareAndSwapInt32(m.peak, p, n) {
				break
			}
		}
	}
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(filepath.Join(outDir, "out.txt"), []byte(m.name), 0644)
}

func quietLog() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func TestCollectAllSuccess(t *testing.T) {
	dir := t.TempDir()
	run := NewRun(2, time.Second, dir, nil, quietLog())
	run.Register(&fakeModule{name: "windows/fileshares"})
	run.Register(&fakeModule{name: "second"})

	results, err := run.CollectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "windows/fileshares", results[0].Module)
	assert.Equal(t, "second", results[1].Module)
	for _, r := range results {
		assert.True(t, r.OK)
		assert.False(t, r.EndedAt.Before(r.StartedAt))
	}
	assert.FileExists(t, filepath.Join(dir, "windows_fileshares", "out.txt"))
	assert.Equal(t, []string{"windows/fileshares", "second"}, run.Modules())
}

func TestCollectAllLimitsParallelism(t *testing.T) {
	var running, peak int32
	run := NewRun(2, time.Second, t.TempDir(), nil, quietLog())
	for i := 0; i < 6; i++ {
		run.Register(&fakeModule{name: "m" + string(rune('a'+i)), delay: 20 * time.Millisecond, running: &running, peak: &peak})
	}

	_, err := run.CollectAll(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestCollectAllAggregatesFailures(t *testing.T) {
	run := NewRun(1, time.Second, t.TempDir(), nil, quietLog())
	run.Register(&fakeModule{name: "ok"})
	run.Register(&fakeModule{name: "bad1", err: errors.New("boom")})
	run.Register(&fakeModule{name: "bad2", err: errors.New("bang")})

	results, err := run.CollectAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module bad1 failed: boom")
	assert.Contains(t, err.Error(), "and 1 other module errors")
	assert.True(t, results[0].OK)
	assert.Equal(t, "bang", results[2].Error)
}

func TestCollectAllTimeout(t *testing.T) {
	run := NewRun(1, 10*time.Millisecond, t.TempDir(), nil, quietLog())
	run.Register(&fakeModule{name: "slow", delay: time.Second})

	results, err := run.CollectAll(context.Background())
	require.Error(t, err)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, context.DeadlineExceeded.Error())
}

func TestCollectAllEmpty(t *testing.T) {
	results, err := NewRun(4, time.Second, t.TempDir(), nil, nil).CollectAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClampParallelism(t *testing.T) {
	assert.Equal(t, 1, ClampParallelism(0))
	assert.Equal(t, 1, ClampParallelism(-3))
	assert.Equal(t, 8, ClampParallelism(8))
	assert.Equal(t, MaxParallelism, ClampParallelism(1000))
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"windows/fileshares": "windows_fileshares",
		"Host Name.local":    "host_name_local",
		"__a//b__":           "a_b",
		"%%%":                "unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}
