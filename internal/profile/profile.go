package profile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// LLM configuration (OpenAI-compatible protocol) used for fact extraction.
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout int // request timeout in seconds (default: 120)

	// Embedding configuration used for source-item retrieval.
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingModel      string
	EmbeddingDimensions int

	// ExtractionRPS throttles fact-extraction calls per second.
	ExtractionRPS float64

	Mode    string // "prod", "dev" or "demo"
	Addr    string
	Data    string
	Driver  string // "postgres" or "sqlite"
	DSN     string
	Version string
	Port    int

	AIEnabled bool
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the extraction LLM is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMAPIKey = getEnvOrDefault("TUTORMIND_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("TUTORMIND_LLM_BASE_URL", "https://api.openai.com/v1")
	p.LLMModel = getEnvOrDefault("TUTORMIND_LLM_MODEL", "gpt-4o-mini")
	p.LLMTimeout = getEnvOrDefaultInt("TUTORMIND_LLM_TIMEOUT_SECONDS", 120)

	p.EmbeddingAPIKey = getEnvOrDefault("TUTORMIND_EMBEDDING_API_KEY", p.LLMAPIKey)
	p.EmbeddingBaseURL = getEnvOrDefault("TUTORMIND_EMBEDDING_BASE_URL", p.LLMBaseURL)
	p.EmbeddingModel = getEnvOrDefault("TUTORMIND_EMBEDDING_MODEL", "text-embedding-3-small")
	p.EmbeddingDimensions = getEnvOrDefaultInt("TUTORMIND_EMBEDDING_DIMENSIONS", 1536)

	p.ExtractionRPS = getEnvOrDefaultFloat("TUTORMIND_EXTRACTION_RPS", 1)

	// AI is enabled if the extraction API key is configured.
	p.AIEnabled = p.LLMAPIKey != ""
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	switch p.Driver {
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn is required for the postgres driver")
		}
	case "sqlite":
		if p.DSN == "" {
			p.DSN = filepath.Join(p.Data, "tutormind_"+p.Mode+".db")
		}
	default:
		return errors.Errorf("unsupported driver: %s", p.Driver)
	}

	return nil
}
