package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.String("job", "abc"))
	ctx = AppendCtx(ctx, slog.Int("workers", 4))
	log.InfoContext(ctx, "started", "src", "in.tif")
	log.DebugContext(ctx, "dropped")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "started", rec["msg"])
	assert.Equal(t, "abc", rec["job"])
	assert.Equal(t, float64(4), rec["workers"])
	assert.Equal(t, "in.tif", rec["src"])
}

func TestAppendCtx_DoesNotLeakToParent(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	_ = AppendCtx(parent, slog.String("b", "2"))

	var buf bytes.Buffer
	Logger(&buf, false, slog.LevelInfo).InfoContext(parent, "msg")
	assert.Contains(t, buf.String(), "a=1")
	assert.NotContains(t, buf.String(), "b=2")
}

func TestLogger_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelDebug).WithGroup("raster").With("band", 3)
	log.Debug("read")
	assert.Contains(t, buf.String(), "raster.band=3")
}

func TestFileConfig_Writer(t *testing.T) {
	var fallback bytes.Buffer
	w, closer := FileConfig{}.Writer(&fallback)
	assert.Same(t, &fallback, w)
	require.NoError(t, closer())

	path := filepath.Join(t.TempDir(), "alpha.log")
	w, closer = FileConfig{Logfile: path, MaxSize: 1, MaxAge: 1}.Writer(&fallback)
	Logger(w, false, slog.LevelInfo).Info("rotated")
	require.NoError(t, closer())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=rotated")
	assert.Zero(t, fallback.Len())
}
