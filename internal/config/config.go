package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	RAG      RAGConfig      `mapstructure:"rag"`
	Detector DetectorConfig `mapstructure:"detector"`
	Data     DataConfig     `mapstructure:"data"`
	KB       KBConfig       `mapstructure:"kb"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type GeminiConfig struct {
	APIKey          string   `mapstructure:"api_key"`
	ChatModels      []string `mapstructure:"chat_models"`
	EmbeddingModel  string   `mapstructure:"embedding_model"`
	Temperature     float32  `mapstructure:"temperature"`
	MaxOutputTokens int32    `mapstructure:"max_output_tokens"`
	RPMLimit        int      `mapstructure:"rpm_limit"`
}

type RAGConfig struct {
	VectorsDir    string  `mapstructure:"vectors_dir"`
	TopK          int     `mapstructure:"top_k"`
	MinSimilarity float32 `mapstructure:"min_similarity"`
}

type DetectorConfig struct {
	Mode          string        `mapstructure:"mode"` // "http" / "mock"
	URL           string        `mapstructure:"url"`
	ConfThreshold float64       `mapstructure:"conf_threshold"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type DataConfig struct {
	SessionsDir string `mapstructure:"sessions_dir"`
}

type KBConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	BatchSize    int `mapstructure:"batch_size"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("gemini.chat_models", []string{"gemini-2.5-flash"})
	v.SetDefault("gemini.embedding_model", "gemini-embedding-001")
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.max_output_tokens", 2048)
	v.SetDefault("gemini.rpm_limit", 15)
	v.SetDefault("rag.vectors_dir", "data/vectors")
	v.SetDefault("rag.top_k", 3)
	v.SetDefault("rag.min_similarity", 0.0)
	v.SetDefault("detector.mode", "http")
	v.SetDefault("detector.conf_threshold", 0.25)
	v.SetDefault("detector.timeout", 30*time.Second)
	v.SetDefault("data.sessions_dir", "data/sessions")
	v.SetDefault("kb.chunk_size", 1000)
	v.SetDefault("kb.chunk_overlap", 200)
	v.SetDefault("kb.batch_size", 20)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// 环境变量覆盖
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		v.Set("gemini.api_key", key)
	}
	if url := os.Getenv("DETECTOR_URL"); url != "" {
		v.Set("detector.url", url)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini.api_key is required (set in config or GEMINI_API_KEY env)")
	}
	if cfg.Detector.Mode == "http" && cfg.Detector.URL == "" {
		return nil, fmt.Errorf("detector.url is required when detector.mode is \"http\" (or DETECTOR_URL env)")
	}
	if cfg.KB.ChunkOverlap >= cfg.KB.ChunkSize {
		return nil, fmt.Errorf("kb.chunk_overlap (%d) must be smaller than kb.chunk_size (%d)", cfg.KB.ChunkOverlap, cfg.KB.ChunkSize)
	}

	return &cfg, nil
}
