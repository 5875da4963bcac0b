package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"ai": {
			"provider": "gemini",
			"data": {"api_key": "k"},
			"generate_model": "gemini-2.0-flash",
			"embed_model": "text-embedding-004"
		}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, "local", cfg.FileStore.Type)
	require.Equal(t, 500, cfg.RAG.ChunkSize)
	require.NotNil(t, cfg.RAG.ChunkOverlap)
	require.Equal(t, 50, *cfg.RAG.ChunkOverlap)
	require.Equal(t, 4, cfg.RAG.TopK)
	require.Equal(t, 64, cfg.RAG.IndexCacheSize)
	require.Equal(t, int64(50<<20), cfg.RAG.MaxUploadBytes)
	require.Equal(t, 60, cfg.AI.TimeoutSeconds)
	require.Equal(t, 4096, cfg.AI.EmbedCacheSize)
	require.Equal(t, "*/10 * * * *", cfg.History.SweepSpec)
}

func TestLoadRequiresAIModels(t *testing.T) {
	path := writeConfig(t, `{"ai": {"provider": "gemini"}}`)
	_, err := Load(path)
	require.ErrorContains(t, err, "generate_model")
}

func TestLoadRejectsRemotePrimaryStore(t *testing.T) {
	path := writeConfig(t, `{
		"file_store": {"type": "s3", "data": {"bucket": "b"}},
		"ai": {"provider": "gemini", "generate_model": "g", "embed_model": "e"}
	}`)
	_, err := Load(path)
	require.ErrorContains(t, err, "file_store.type must be local")
}

func TestLoadRejectsBadOverlap(t *testing.T) {
	path := writeConfig(t, `{
		"rag": {"chunk_size": 100, "chunk_overlap": 100},
		"ai": {"provider": "gemini", "generate_model": "g", "embed_model": "e"}
	}`)
	_, err := Load(path)
	require.ErrorContains(t, err, "chunk_overlap")
}

func TestLoadSmallChunkSizeSkipsOverlapDefault(t *testing.T) {
	path := writeConfig(t, `{
		"rag": {"chunk_size": 40},
		"ai": {"provider": "gemini", "generate_model": "g", "embed_model": "e"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 40, cfg.RAG.ChunkSize)
	require.NotNil(t, cfg.RAG.ChunkOverlap)
	require.Equal(t, 0, *cfg.RAG.ChunkOverlap)
}

func TestLoadKeepsExplicitZeroOverlap(t *testing.T) {
	path := writeConfig(t, `{
		"rag": {"chunk_size": 500, "chunk_overlap": 0},
		"ai": {"provider": "gemini", "generate_model": "g", "embed_model": "e"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.RAG.ChunkOverlap)
	require.Equal(t, 0, *cfg.RAG.ChunkOverlap)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
