package decoder

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDecoder writes an executable shell script standing in for demoinfogo.
func fakeDecoder(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "demoinfogo")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func newTestDecoder(exe, tmp string) *Decoder {
	return New(config.DecoderConfig{Executable: exe, TmpDir: tmp},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRun_WritesOutput(t *testing.T) {
	exe := fakeDecoder(t, `echo "$1 $2 $3"`)
	tmp := filepath.Join(t.TempDir(), "scratch")

	out, err := newTestDecoder(exe, tmp).Run(context.Background(), "match.dem", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, OutputName), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "match.dem -gameevents -extrainfo\n", string(data))
}

func TestRun_NonZeroExit(t *testing.T) {
	exe := fakeDecoder(t, `echo "bad demo header" >&2; exit 3`)

	_, err := newTestDecoder(exe, t.TempDir()).Run(context.Background(), "broken.dem", false)
	require.ErrorIs(t, err, ErrDecoderFailed)
	assert.Contains(t, err.Error(), "bad demo header")
}

func TestRun_MissingExecutable(t *testing.T) {
	_, err := newTestDecoder(filepath.Join(t.TempDir(), "nope"), t.TempDir()).Run(context.Background(), "x.dem", false)
	assert.ErrorIs(t, err, ErrDecoderFailed)
}

func TestRun_Timeout(t *testing.T) {
	exe := fakeDecoder(t, `exec sleep 5`)
	d := New(config.DecoderConfig{Executable: exe, TmpDir: t.TempDir(), Timeout: 50 * time.Millisecond},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := d.Run(context.Background(), "slow.dem", false)
	assert.ErrorIs(t, err, ErrDecoderFailed)
}

func TestRun_Skip(t *testing.T) {
	tmp := t.TempDir()
	d := newTestDecoder("/does/not/exist", tmp)

	_, err := d.Run(context.Background(), "match.dem", true)
	require.Error(t, err, "skipping without earlier output must fail")

	require.NoError(t, os.WriteFile(filepath.Join(tmp, OutputName), []byte("round_prestart\n{\n}\n"), 0644))
	out, err := d.Run(context.Background(), "match.dem", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, OutputName), out)
}

func TestLimitedWriter(t *testing.T) {
	w := &limitedWriter{buf: new(bytes.Buffer), max: 4}
	n, err := w.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	_, _ = w.Write([]byte("gh"))
	assert.Equal(t, "abcd", w.buf.String())
}
