package sheetmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/store"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
mode: streaming
strict: false
max_depth: 8
comment_author: reports
store:
  driver: memory
`))
	require.NoError(t, err)
	assert.Equal(t, "streaming", cfg.Mode)
	require.NotNil(t, cfg.Strict)
	assert.False(t, *cfg.Strict)
	assert.Equal(t, store.DriverMemory, cfg.Store.Driver)

	opts := cfg.Options()
	assert.Equal(t, backend.Streaming, opts.Mode)
	assert.False(t, opts.ShouldBeStrict())
	assert.Equal(t, 8, opts.MaxDepth)
	assert.Equal(t, "xlsx", opts.Backend.Name())

	st, err := cfg.OpenStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.DriverMemory, st.Driver())
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{}`))
	require.NoError(t, err)

	opts := cfg.Options()
	assert.Equal(t, backend.Buffered, opts.Mode)
	assert.True(t, opts.ShouldBeStrict())
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"mode", "mode: sideways"},
		{"max depth", "max_depth: -1"},
		{"syntax", "mode: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheetmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: buffered\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "buffered", cfg.Mode)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
