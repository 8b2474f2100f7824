package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 800, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 100, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, 50, cfg.Knowledge.MinTextLen)
	assert.Equal(t, 3000, cfg.Knowledge.FrontSkipChars)
	assert.Equal(t, 10, cfg.Knowledge.EmbedBatchSize)
	assert.Equal(t, 1000, cfg.Knowledge.UpsertBatch)
	assert.Equal(t, 384, cfg.Qdrant.VectorDim)
}

func TestValidateRequiresLLMKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.LLM.APIKey = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingLLMKey)

	cfg.LLM.APIKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsOverlapNotBelowSize(t *testing.T) {
	cfg := defaultConfig()
	cfg.LLM.APIKey = "k"
	cfg.Knowledge.ChunkSize = 100
	cfg.Knowledge.ChunkOverlap = 100
	assert.Error(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("APP_PORT", "9999")
	t.Setenv("KB_CHUNK_SIZE", "400")
	t.Setenv("QDRANT_COLLECTION", "other_kb")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, 9999, cfg.App.Port)
	assert.Equal(t, 400, cfg.Knowledge.ChunkSize)
	assert.Equal(t, "other_kb", cfg.Qdrant.Collection)
}

func TestLoadMissingKeyFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("LLM_API_KEY", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingLLMKey)
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "app"
	cfg.MySQL.Password = "pw"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "study"
	cfg.MySQL.Params = "parseTime=true"
	assert.Equal(t, "app:pw@tcp(db:3307)/study?parseTime=true", cfg.MySQLDSN())
}

func TestHTTPAddr(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}
