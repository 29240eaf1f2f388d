package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "xchain.log")
	file, err := OpenLogFile(path)
	require.NoError(t, err)
	defer file.Close()

	InitLogger(true, file)
	t.Cleanup(func() {
		log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
		log.SetLevel(log.InfoLevel)
	})

	assert.Equal(t, log.DebugLevel, log.GetLevel())
	log.WithField("caller", "TestInitLogger").Info("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, string(data), "caller=TestInitLogger")
}

func TestOpenLogFile_EmptyPath(t *testing.T) {
	file, err := OpenLogFile("")
	assert.NoError(t, err)
	assert.Nil(t, file)
}
