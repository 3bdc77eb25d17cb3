package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	HostGitHub = "github"
	HostLocal  = "local"
)

// Keyring item keys for secrets that may be left out of the config file.
const (
	SecretLLMAPIKey           = "llm_api_key"
	SecretGitHubToken         = "github_token"
	SecretGitHubWebhookSecret = "github_webhook_secret"
	SecretLinearWebhookSecret = "linear_webhook_secret"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	LLM      LLMConfig      `yaml:"llm"`
	Docs     DocsConfig     `yaml:"docs"`
	GitHub   GitHubConfig   `yaml:"github"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Webhooks WebhooksConfig `yaml:"webhooks"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type DBConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Path     string `yaml:"path"`
	LogLevel string `yaml:"log_level"`
}

type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int    `yaml:"max_tokens"`
}

type DocsConfig struct {
	Host                string `yaml:"host"`
	Owner               string `yaml:"owner"`
	Repo                string `yaml:"repo"`
	LocalPath           string `yaml:"local_path"`
	BaseBranch          string `yaml:"base_branch"`
	DefaultPage         string `yaml:"default_page"`
	PagesGlob           string `yaml:"pages_glob"`
	SiteURL             string `yaml:"site_url"`
	CreateMissingPages  bool   `yaml:"create_missing_pages"`
	CleanupOrphanBranch bool   `yaml:"cleanup_orphan_branch"`
}

type GitHubConfig struct {
	Token string `yaml:"token"`
}

type PipelineConfig struct {
	CallTimeout  time.Duration `yaml:"call_timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	Timezone     string        `yaml:"timezone"`
}

type WebhooksConfig struct {
	GitHubSecret string `yaml:"github_secret"`
	LinearSecret string `yaml:"linear_secret"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{ListenAddr: ":8080"},
		DB:     DBConfig{Driver: "sqlite", LogLevel: "warn"},
		LLM:    LLMConfig{Provider: "anthropic", MaxTokens: 4096},
		Docs: DocsConfig{
			Host:        HostGitHub,
			DefaultPage: "app/docs/api/page.md",
			PagesGlob:   "app/docs/**/page.md",
			SiteURL:     "https://release-radar-docs.vercel.app",
		},
		Pipeline: PipelineConfig{
			CallTimeout:  30 * time.Second,
			MaxRetries:   3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2,
			Timezone:     "UTC",
		},
	}
}

// Load reads path over the defaults, expanding ${VAR} references, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		expanded := os.ExpandEnv(string(raw))
		expanded = strings.ReplaceAll(expanded, "\r\n", "\n")
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	setIf := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setIf(&c.Server.ListenAddr, "RELEASE_RADAR_LISTEN_ADDR")
	setIf(&c.DB.DSN, "DATABASE_URL")
	setIf(&c.GitHub.Token, "GITHUB_TOKEN")
	setIf(&c.Webhooks.GitHubSecret, "GITHUB_WEBHOOK_SECRET")
	setIf(&c.Webhooks.LinearSecret, "LINEAR_WEBHOOK_SECRET")
	setIf(&c.Docs.Owner, "DOCS_REPO_OWNER")
	setIf(&c.Docs.Repo, "DOCS_REPO_NAME")
	switch strings.ToLower(c.LLM.Provider) {
	case "openai":
		setIf(&c.LLM.APIKey, "LLM_API_KEY", "OPENAI_API_KEY")
	case "gemini", "google":
		setIf(&c.LLM.APIKey, "LLM_API_KEY", "GEMINI_API_KEY")
	default:
		setIf(&c.LLM.APIKey, "LLM_API_KEY", "ANTHROPIC_API_KEY")
	}
}

// SecretSource looks up a stored secret by key.
type SecretSource interface {
	Get(key string) (string, error)
}

// FillSecrets fills blank secrets from src. Missing entries are left blank.
func (c *Config) FillSecrets(src SecretSource) error {
	if src == nil {
		return nil
	}
	targets := []struct {
		key string
		dst *string
	}{
		{SecretLLMAPIKey, &c.LLM.APIKey},
		{SecretGitHubToken, &c.GitHub.Token},
		{SecretGitHubWebhookSecret, &c.Webhooks.GitHubSecret},
		{SecretLinearWebhookSecret, &c.Webhooks.LinearSecret},
	}
	var errs []error
	for _, t := range targets {
		if *t.dst != "" {
			continue
		}
		v, err := src.Get(t.key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.key, err))
			continue
		}
		*t.dst = v
	}
	return errors.Join(errs...)
}

func (c Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	switch strings.ToLower(c.DB.Driver) {
	case "", "sqlite":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required when db.driver=postgres")
		}
	default:
		return fmt.Errorf("db.driver %q is not supported", c.DB.Driver)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "anthropic", "claude", "gemini", "google":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	switch c.Docs.Host {
	case HostGitHub:
		if c.Docs.Owner == "" || c.Docs.Repo == "" {
			return fmt.Errorf("docs.owner and docs.repo are required when docs.host=github")
		}
	case HostLocal:
		if c.Docs.LocalPath == "" {
			return fmt.Errorf("docs.local_path is required when docs.host=local")
		}
	default:
		return fmt.Errorf("docs.host must be %q or %q", HostGitHub, HostLocal)
	}
	if strings.TrimSpace(c.Docs.DefaultPage) == "" {
		return fmt.Errorf("docs.default_page is required")
	}
	p := c.Pipeline
	if p.CallTimeout <= 0 || p.InitialDelay <= 0 || p.MaxDelay < p.InitialDelay {
		return fmt.Errorf("pipeline timings must be positive with max_delay >= initial_delay")
	}
	if p.MaxRetries < 0 || p.Multiplier < 1 {
		return fmt.Errorf("pipeline.max_retries must be >= 0 and multiplier >= 1")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("pipeline.timezone: %w", err)
	}
	return nil
}

// Location resolves the timezone that defines release weeks.
func (c Config) Location() (*time.Location, error) {
	if c.Pipeline.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Pipeline.Timezone)
}
