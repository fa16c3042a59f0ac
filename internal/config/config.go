package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// keyringService is the OS keyring service name used when the model API key
// is not present in the environment.
const keyringService = "codefactory"

const (
	defaultDatabasePath     = "codefactory.db"
	defaultServerAddr       = ":5000"
	defaultSnapshotMaxFile  = 64 * 1024
	defaultSnapshotMaxTotal = 512 * 1024
)

// Config is built once at startup and handed to each collaborator at
// construction time. Nothing reads the environment after Load returns.
type Config struct {
	ServerAddr string

	ModelProvider string // openai | anthropic | gemini
	ModelName     string
	ModelAPIKey   string

	GitHubToken        string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	RepoDir      string
	BaseBranch   string
	DatabasePath string

	DebugPrompts          bool
	SnapshotMaxFileBytes  int64
	SnapshotMaxTotalBytes int64
}

// Load reads .env (when one exists at the project root or cwd) and the
// process environment, then fails on the first missing required value so a
// misconfigured deployment dies at startup rather than at first use.
func Load() (*Config, error) {
	loadDotenv()

	cfg := &Config{
		ServerAddr:            getenvDefault("SERVER_ADDR", defaultServerAddr),
		ModelProvider:         strings.ToLower(strings.TrimSpace(os.Getenv("MODEL_PROVIDER"))),
		ModelName:             strings.TrimSpace(os.Getenv("MODEL_NAME")),
		ModelAPIKey:           strings.TrimSpace(os.Getenv("MODEL_API_KEY")),
		GitHubToken:           strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
		GitHubClientID:        strings.TrimSpace(os.Getenv("GITHUB_CLIENT_ID")),
		GitHubClientSecret:    strings.TrimSpace(os.Getenv("GITHUB_CLIENT_SECRET")),
		GitHubCallbackURL:     strings.TrimSpace(os.Getenv("GITHUB_CALLBACK_URL")),
		RepoDir:               strings.TrimSpace(os.Getenv("REPO_DIR")),
		BaseBranch:            strings.TrimSpace(os.Getenv("BASE_BRANCH")),
		DatabasePath:          getenvDefault("DATABASE_PATH", defaultDatabasePath),
		DebugPrompts:          strings.EqualFold(os.Getenv("DEBUG_PROMPTS"), "true"),
		SnapshotMaxFileBytes:  defaultSnapshotMaxFile,
		SnapshotMaxTotalBytes: defaultSnapshotMaxTotal,
	}

	if v := os.Getenv("SNAPSHOT_MAX_FILE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("SNAPSHOT_MAX_FILE_BYTES must be a positive integer, got %q", v)
		}
		cfg.SnapshotMaxFileBytes = n
	}
	if v := os.Getenv("SNAPSHOT_MAX_TOTAL_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("SNAPSHOT_MAX_TOTAL_BYTES must be a positive integer, got %q", v)
		}
		cfg.SnapshotMaxTotalBytes = n
	}

	// The model API key may live in the OS keyring instead of the
	// environment, keyed by provider id.
	if cfg.ModelAPIKey == "" && cfg.ModelProvider != "" {
		if key, err := keyring.Get(keyringService, cfg.ModelProvider); err == nil {
			cfg.ModelAPIKey = strings.TrimSpace(key)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		name, value string
	}{
		{"MODEL_PROVIDER", c.ModelProvider},
		{"MODEL_NAME", c.ModelName},
		{"MODEL_API_KEY", c.ModelAPIKey},
		{"GITHUB_TOKEN", c.GitHubToken},
		{"GITHUB_CLIENT_ID", c.GitHubClientID},
		{"GITHUB_CLIENT_SECRET", c.GitHubClientSecret},
		{"GITHUB_CALLBACK_URL", c.GitHubCallbackURL},
		{"REPO_DIR", c.RepoDir},
		{"BASE_BRANCH", c.BaseBranch},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch c.ModelProvider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unsupported MODEL_PROVIDER %q (want openai, anthropic or gemini)", c.ModelProvider)
	}
	return nil
}

// StoreAPIKey saves a model API key in the OS keyring for later Loads.
func StoreAPIKey(provider, apiKey string) error {
	if provider == "" {
		return fmt.Errorf("provider is required")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is empty")
	}
	return keyring.Set(keyringService, provider, apiKey)
}

// loadDotenv loads .env from the nearest directory containing go.mod, falling
// back to the working directory. Absence of a .env file is not an error.
func loadDotenv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			_ = godotenv.Load(filepath.Join(dir, ".env"))
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	_ = godotenv.Load()
}

func getenvDefault(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}
