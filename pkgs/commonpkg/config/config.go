package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/database"
	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"gopkg.in/yaml.v3"
)

////////////////////////////////////////////////////////////////////////////////
// Configuration Structures
////////////////////////////////////////////////////////////////////////////////

const (
	EMBED_PROVIDER_LOCAL  = "local"
	EMBED_PROVIDER_OPENAI = "openai"
	EMBED_PROVIDER_OLLAMA = "ollama"
)

// Embedding selects and configures the embedding provider.
type Embedding struct {
	Provider   string        `yaml:"provider"` // "local", "openai" or "ollama"
	Model      string        `yaml:"model"`
	APIBase    string        `yaml:"api_base"`    // For openai
	APIKey     string        `yaml:"api_key"`     // For openai
	VectorPath string        `yaml:"vector_path"` // gjson path of the vector in the openai response
	OllamaBase string        `yaml:"ollama_base"` // For ollama
	VectorDim  int           `yaml:"vector_dim"`
	Timeout    time.Duration `yaml:"timeout"` // 0 selects the provider default
}

type Server struct {
	Port string `yaml:"port"`
}

type Chroma struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
}

// Config is read once at start-up and handed to constructors by value.
type Config struct {
	Database  database.DatabaseConfig `yaml:"database"`
	Embedding Embedding               `yaml:"embedding"`
	Server    Server                  `yaml:"server"`
	Chroma    Chroma                  `yaml:"chroma"`
	LogPath   string                  `yaml:"log_path"`
}

////////////////////////////////////////////////////////////////////////////////

func Default() Config {
	return Config{
		Database: database.DatabaseConfig{
			Type:     database.DATABASE_TYPE_POSTGRES,
			Host:     "localhost",
			Port:     "5432",
			User:     "xchain",
			Password: "xchain",
			DBName:   "xchain",
		},
		Embedding: Embedding{
			Provider:   EMBED_PROVIDER_LOCAL,
			Model:      "text-embedding-3-small",
			APIBase:    "https://api.openai.com/v1",
			VectorPath: "data.0.embedding",
			OllamaBase: "http://localhost:11434",
			VectorDim:  1536,
		},
		Server: Server{
			Port: "8000",
		},
		Chroma: Chroma{
			URL:        "http://localhost:8001",
			Collection: "onchain-events",
		},
		LogPath: "xchain.log",
	}
}

////////////////////////////////////////////////////////////////////////////////
// Loading
////////////////////////////////////////////////////////////////////////////////

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	conf := Default()

	if path != "" {
		if err := readFile(path, &conf); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&conf, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func readFile(path string, conf *Config) error {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, conf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(conf *Config, lookup lookupFunc) error {
	// the conventional name; XCHAIN_DATABASE_URL below still wins
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		conf.Database.URL = v
	}

	strs := map[string]*string{
		"XCHAIN_EMBED_PROVIDER":    &conf.Embedding.Provider,
		"XCHAIN_EMBED_MODEL":       &conf.Embedding.Model,
		"XCHAIN_EMBED_API_BASE":    &conf.Embedding.APIBase,
		"XCHAIN_EMBED_API_KEY":     &conf.Embedding.APIKey,
		"XCHAIN_EMBED_VECTOR_PATH": &conf.Embedding.VectorPath,
		"XCHAIN_OLLAMA_BASE":       &conf.Embedding.OllamaBase,
		"XCHAIN_DATABASE_URL":      &conf.Database.URL,
		"XCHAIN_DB_TYPE":           &conf.Database.Type,
		"XCHAIN_DB_HOST":           &conf.Database.Host,
		"XCHAIN_DB_PORT":           &conf.Database.Port,
		"XCHAIN_DB_USER":           &conf.Database.User,
		"XCHAIN_DB_PASSWORD":       &conf.Database.Password,
		"XCHAIN_DB_NAME":           &conf.Database.DBName,
		"XCHAIN_DB_PATH":           &conf.Database.Path,
		"XCHAIN_SERVER_PORT":       &conf.Server.Port,
		"XCHAIN_CHROMA_URL":        &conf.Chroma.URL,
		"XCHAIN_LOG_PATH":          &conf.LogPath,
	}
	for key, field := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup("XCHAIN_VECTOR_DIM"); ok && v != "" {
		dim, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: XCHAIN_VECTOR_DIM=%q is not an integer", errs.ErrConfiguration, v)
		}
		conf.Embedding.VectorDim = dim
	}

	if v, ok := lookup("XCHAIN_EMBED_TIMEOUT"); ok && v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: XCHAIN_EMBED_TIMEOUT=%q is not a duration", errs.ErrConfiguration, v)
		}
		conf.Embedding.Timeout = timeout
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

func (c Config) Validate() error {
	if c.Embedding.VectorDim <= 0 {
		return fmt.Errorf("%w: vector_dim must be positive, got %d", errs.ErrConfiguration, c.Embedding.VectorDim)
	}

	switch c.Embedding.Provider {
	case "", EMBED_PROVIDER_LOCAL, EMBED_PROVIDER_OPENAI, EMBED_PROVIDER_OLLAMA:
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", errs.ErrConfiguration, c.Embedding.Provider)
	}

	switch c.Database.Type {
	case database.DATABASE_TYPE_POSTGRES, database.DATABASE_TYPE_SQLITE:
	default:
		return fmt.Errorf("%w: unsupported database type %q", errs.ErrConfiguration, c.Database.Type)
	}
	if c.Database.URL != "" && c.Database.Type != database.DATABASE_TYPE_POSTGRES {
		return fmt.Errorf("%w: database url requires type postgres", errs.ErrConfiguration)
	}
	return nil
}
