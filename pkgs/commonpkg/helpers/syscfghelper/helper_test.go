package syscfghelper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/WangWilly/xChain/pkgs/commonpkg/services"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, dir string) string {
	conf := `
database:
  type: sqlite
  path: ` + filepath.Join(dir, "events.db") + `
embedding:
  provider: local
  vector_dim: 8
log_path: ` + filepath.Join(dir, "xchain.log") + `
`
	path := filepath.Join(dir, "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(conf), 0644))
	return path
}

func TestHelper_SqliteWiring(t *testing.T) {
	dir := t.TempDir()
	h, err := New(CliParams{ConfigPath: writeConf(t, dir)})
	require.NoError(t, err)
	t.Cleanup(func() {
		h.Close()
		log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
	})

	assert.Equal(t, 8, h.GetConfig().Embedding.VectorDim)

	svc, err := h.GetEventService()
	require.NoError(t, err)

	ctx := context.Background()
	event, err := svc.Ingest(ctx, services.IngestRequest{TxHash: "0x1", Payload: "nft mint"})
	require.NoError(t, err)
	assert.Len(t, event.Embedding.Slice(), 8)

	hits, err := svc.Search(ctx, services.SearchRequest{Query: "nft mint"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
}

func TestStoreForDriver(t *testing.T) {
	_, err := storeForDriver("postgres")
	assert.NoError(t, err)
	_, err = storeForDriver("sqlite3")
	assert.NoError(t, err)
	_, err = storeForDriver("mysql")
	assert.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	path, err := ResolveConfigPath("custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", path)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	path, err = ResolveConfigPath("")
	require.NoError(t, err)
	assert.Empty(t, path)

	require.NoError(t, os.WriteFile(DEFAULT_CONF_FILE, []byte("{}"), 0644))
	path, err = ResolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_CONF_FILE, path)
}
