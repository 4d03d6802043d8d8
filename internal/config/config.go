package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port                 int              `json:"port"`
	JWTSecret            string           `json:"jwt_secret"`
	JWTTTLHours          int              `json:"jwt_ttl_hours"`
	AdminBootstrapSecret string           `json:"admin_bootstrap_secret"`
	CORSAllowlist        []string         `json:"cors_allowlist"`
	LogConfig            logger.LogConfig `json:"log_config"`
	Database             DatabaseConfig   `json:"database"`
	AI                   AIConfig         `json:"ai"`
	Chat                 ChatConfig       `json:"chat"`
	Retrieval            RetrievalConfig  `json:"retrieval"`
	FileStore            FileStoreConfig  `json:"file_store"`
	UploadMaxBytes       int64            `json:"upload_max_bytes"`
	UsageRetentionDays   int              `json:"usage_retention_days"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider      string      `json:"provider"`
	Model         string      `json:"model"`
	EmbedProvider string      `json:"embed_provider"`
	EmbedModel    string      `json:"embed_model"`
	Data          interface{} `json:"data"`
	EmbedData     interface{} `json:"embed_data"`
	EmbedCacheCap int         `json:"embed_cache_cap"`
	EmbedCacheTTL int         `json:"embed_cache_ttl_minutes"`
}

type ChatConfig struct {
	HistoryWindow       int `json:"history_window"`
	MemoryCapacity      int `json:"memory_capacity"`
	MemoryIdleMinutes   int `json:"memory_idle_minutes"`
	MaxMessagesPerChat  int `json:"max_messages_per_chat"`
	NoticeSoftThreshold int `json:"notice_soft_threshold"`
	NoticeHardThreshold int `json:"notice_hard_threshold"`
}

type RetrievalConfig struct {
	TopK              int      `json:"top_k"`
	MaxChunkSize      int      `json:"max_chunk_size"`
	EntityNames       []string `json:"entity_names"`
	PossessivePhrases []string `json:"possessive_phrases"`
}

type FileStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
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
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	applyChatDefaults(&cfg.Chat)
	applyRetrievalDefaults(&cfg.Retrieval)
	if cfg.AI.EmbedCacheCap == 0 {
		cfg.AI.EmbedCacheCap = 4096
	}
	if cfg.AI.EmbedCacheTTL == 0 {
		cfg.AI.EmbedCacheTTL = 120
	}
	if cfg.UploadMaxBytes == 0 {
		cfg.UploadMaxBytes = 10 * 1024 * 1024
	}
	if cfg.UsageRetentionDays == 0 {
		cfg.UsageRetentionDays = 90
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	return &cfg, nil
}

func applyChatDefaults(chat *ChatConfig) {
	if chat.HistoryWindow == 0 {
		chat.HistoryWindow = 20
	}
	if chat.MemoryCapacity == 0 {
		chat.MemoryCapacity = 2048
	}
	if chat.MemoryIdleMinutes == 0 {
		chat.MemoryIdleMinutes = 120
	}
	if chat.MaxMessagesPerChat == 0 {
		chat.MaxMessagesPerChat = 200
	}
	if chat.NoticeSoftThreshold == 0 {
		chat.NoticeSoftThreshold = 150
	}
	if chat.NoticeHardThreshold == 0 {
		chat.NoticeHardThreshold = 180
	}
}

func applyRetrievalDefaults(r *RetrievalConfig) {
	if r.TopK == 0 {
		r.TopK = 4
	}
	if r.MaxChunkSize == 0 {
		r.MaxChunkSize = 8000
	}
	if len(r.EntityNames) == 0 {
		r.EntityNames = DefaultEntityNames()
	}
	if len(r.PossessivePhrases) == 0 {
		r.PossessivePhrases = DefaultPossessivePhrases()
	}
}

// DefaultEntityNames lists the client/partner names that should pull
// documentary context into a chat turn when mentioned.
func DefaultEntityNames() []string {
	return []string{
		"rousseau",
		"beaumont",
		"castellane",
		"delorme",
		"mercier",
	}
}

// DefaultPossessivePhrases lists firm-speak that implies the question is
// about internal knowledge rather than general conversation.
func DefaultPossessivePhrases() []string {
	return []string{
		"our client",
		"our clients",
		"our firm",
		"our cabinet",
		"our portfolio",
		"our engagement",
		"our documents",
	}
}
