package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultConfigPath     = "config.json"
	DefaultDatabasePath   = "data/memory/jarvis_memory.db"
	DefaultBackend        = "openai"
	DefaultRemoteProvider = "openai"
	DefaultRehydrateTurns = 5
	DefaultRemoteTimeout  = 60 * time.Second
	DefaultLocalTimeout   = 120 * time.Second
	DefaultVoiceCommand   = "espeak"
	DefaultVoiceRate      = 150
)

// Config aggregates every setting of the assistant.
type Config struct {
	// Path is the config file the settings were read from.
	Path   string
	Server ServerConfig
	Remote RemoteConfig
	Local  LocalConfig
	Chat   ChatConfig
	Store  StoreConfig
	Voice  VoiceConfig
}

// Load reads the config file named by JARVIS_CONFIG and applies environment
// overrides. A missing config file is not an error.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// Path returns the config file location: JARVIS_CONFIG or the default.
func Path() string {
	return getEnvOrDefault("JARVIS_CONFIG", DefaultConfigPath)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (*Config, error) {
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := file.applyEnv(); err != nil {
		return nil, err
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	cfg, err := file.resolve()
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	cfg.Server = server
	return cfg, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as given.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// RemoteConfig describes the hosted chat-completion backend.
type RemoteConfig struct {
	// Provider selects the transport: openai, ark, gemini or mock.
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Region   string
	Timeout  time.Duration
}

// LocalConfig describes the local inference process.
type LocalConfig struct {
	ModelPath      string
	Command        string
	Timeout        time.Duration
	FlattenHistory bool
}

// ChatConfig holds routing defaults.
type ChatConfig struct {
	DefaultBackend string
	Persona        string
	RehydrateTurns int
}

// StoreConfig locates the turn database.
type StoreConfig struct {
	Path string
}

// VoiceConfig describes the optional speech output.
type VoiceConfig struct {
	Enabled bool
	Command string
	Rate    int
}

// BackendConfig is the subset of settings the router validates before
// dispatching to a backend.
type BackendConfig struct {
	RemoteAPIKey   string
	LocalModelPath string
}

// Backends returns the credentials and paths required per backend.
func (c *Config) Backends() BackendConfig {
	return BackendConfig{
		RemoteAPIKey:   c.Remote.APIKey,
		LocalModelPath: c.Local.ModelPath,
	}
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalBoolEnv(key string) (*bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
