package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	LogConfig   logger.LogConfig `json:"log_config"`
	CORSOrigins []string         `json:"cors_origins"`
	FileStore   FileStoreConfig  `json:"file_store"`
	Archive     *FileStoreConfig `json:"archive"`
	AI          AIConfig         `json:"ai"`
	RAG         RAGConfig        `json:"rag"`
	History     HistoryConfig    `json:"history"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider             string             `json:"provider"`
	Data                 interface{}        `json:"data"`
	GenerateModel        string             `json:"generate_model"`
	EmbedModel           string             `json:"embed_model"`
	Fallbacks            []AIEndpointConfig `json:"fallbacks"`
	TimeoutSeconds       int                `json:"timeout_seconds"`
	EmbedCacheSize       int                `json:"embed_cache_size"`
	EmbedCacheTTLMinutes int                `json:"embed_cache_ttl_minutes"`
}

// AIEndpointConfig is one fallback backend tried when the primary provider
// fails. embed_model may be empty for generate-only backends.
type AIEndpointConfig struct {
	Provider      string      `json:"provider"`
	Data          interface{} `json:"data"`
	GenerateModel string      `json:"generate_model"`
	EmbedModel    string      `json:"embed_model"`
}

type RAGConfig struct {
	ChunkSize int `json:"chunk_size"`
	// Pointer so an explicit 0 (no overlap) is distinguishable from unset.
	ChunkOverlap   *int  `json:"chunk_overlap"`
	TopK           int   `json:"top_k"`
	IndexCacheSize int   `json:"index_cache_size"`
	MaxUploadBytes int64 `json:"max_upload_bytes"`
}

type HistoryConfig struct {
	MaxMessages    int    `json:"max_messages"`
	MaxIdleMinutes int    `json:"max_idle_minutes"`
	SweepSpec      string `json:"sweep_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.FileStore.Type != "local" {
		return nil, fmt.Errorf("file_store.type must be local (the pipeline reads uploads back); use archive for s3 mirroring")
	}
	if cfg.FileStore.Data == nil {
		cfg.FileStore.Data = map[string]interface{}{"dir": "./uploaded_pdfs"}
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.GenerateModel == "" {
		return nil, fmt.Errorf("ai.generate_model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	for i, fb := range cfg.AI.Fallbacks {
		if fb.Provider == "" || fb.GenerateModel == "" {
			return nil, fmt.Errorf("ai.fallbacks[%d]: provider and generate_model are required", i)
		}
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.AI.EmbedCacheSize == 0 {
		cfg.AI.EmbedCacheSize = 4096
	}
	if cfg.AI.EmbedCacheTTLMinutes == 0 {
		cfg.AI.EmbedCacheTTLMinutes = 120
	}
	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = 500
	}
	if cfg.RAG.ChunkOverlap == nil {
		overlap := 0
		if cfg.RAG.ChunkSize > 50 {
			overlap = 50
		}
		cfg.RAG.ChunkOverlap = &overlap
	}
	if *cfg.RAG.ChunkOverlap < 0 || *cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("rag.chunk_overlap must satisfy 0 <= overlap < chunk_size")
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = 4
	}
	if cfg.RAG.IndexCacheSize <= 0 {
		cfg.RAG.IndexCacheSize = 64
	}
	if cfg.RAG.MaxUploadBytes <= 0 {
		cfg.RAG.MaxUploadBytes = 50 << 20
	}
	if cfg.History.SweepSpec == "" {
		cfg.History.SweepSpec = "*/10 * * * *"
	}
	return &cfg, nil
}
