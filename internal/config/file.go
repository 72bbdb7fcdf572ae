package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk settings document. JSON and YAML are both accepted.
type File struct {
	OpenAIAPIKey         string `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	LlamaModelPath       string `json:"llama_model_path,omitempty" yaml:"llama_model_path,omitempty"`
	RemoteProvider       string `json:"remote_provider,omitempty" yaml:"remote_provider,omitempty"`
	RemoteModel          string `json:"remote_model,omitempty" yaml:"remote_model,omitempty"`
	RemoteBaseURL        string `json:"remote_base_url,omitempty" yaml:"remote_base_url,omitempty"`
	RemoteTimeoutSeconds int    `json:"remote_timeout_seconds,omitempty" yaml:"remote_timeout_seconds,omitempty"`
	RemoteRegion         string `json:"remote_region,omitempty" yaml:"remote_region,omitempty"`
	LlamaCommand         string `json:"llama_command,omitempty" yaml:"llama_command,omitempty"`
	LlamaTimeoutSeconds  int    `json:"llama_timeout_seconds,omitempty" yaml:"llama_timeout_seconds,omitempty"`
	LlamaFlattenHistory  bool   `json:"llama_flatten_history,omitempty" yaml:"llama_flatten_history,omitempty"`
	DefaultBackend       string `json:"default_backend,omitempty" yaml:"default_backend,omitempty"`
	Persona              string `json:"persona,omitempty" yaml:"persona,omitempty"`
	DatabasePath         string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
	RehydrateTurns       int    `json:"rehydrate_turns,omitempty" yaml:"rehydrate_turns,omitempty"`
	VoiceOutput          bool   `json:"voice_output,omitempty" yaml:"voice_output,omitempty"`
	VoiceCommand         string `json:"voice_command,omitempty" yaml:"voice_command,omitempty"`
	VoiceRate            int    `json:"voice_rate,omitempty" yaml:"voice_rate,omitempty"`
}

// LoadFile reads a settings document. A missing file yields an empty File.
func LoadFile(path string) (File, error) {
	var f File

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return f, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return f, nil
	}
	// YAML rejects the tab indentation common in hand-written JSON.
	if strings.HasPrefix(trimmed, "{") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return f, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return f, nil
}

// Save writes f to path, as JSON when the extension is .json and YAML
// otherwise. The file is readable by the owner only since it holds secrets.
func Save(path string, f File) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(f, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// ErrUnknownField is returned by Set for names that are not settings.
var ErrUnknownField = errors.New("unknown config field")

// Fields lists the settable field names.
func Fields() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set assigns a field by its document name.
func (f *File) Set(name, value string) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if err := set(f, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return nil
}

var setters = map[string]func(*File, string) error{
	"openai_api_key":         func(f *File, v string) error { f.OpenAIAPIKey = v; return nil },
	"llama_model_path":       func(f *File, v string) error { f.LlamaModelPath = v; return nil },
	"remote_provider":        func(f *File, v string) error { f.RemoteProvider = v; return nil },
	"remote_model":           func(f *File, v string) error { f.RemoteModel = v; return nil },
	"remote_base_url":        func(f *File, v string) error { f.RemoteBaseURL = v; return nil },
	"remote_timeout_seconds": intSetter(func(f *File) *int { return &f.RemoteTimeoutSeconds }),
	"remote_region":          func(f *File, v string) error { f.RemoteRegion = v; return nil },
	"llama_command":          func(f *File, v string) error { f.LlamaCommand = v; return nil },
	"llama_timeout_seconds":  intSetter(func(f *File) *int { return &f.LlamaTimeoutSeconds }),
	"llama_flatten_history":  boolSetter(func(f *File) *bool { return &f.LlamaFlattenHistory }),
	"default_backend":        func(f *File, v string) error { f.DefaultBackend = v; return nil },
	"persona":                func(f *File, v string) error { f.Persona = v; return nil },
	"database_path":          func(f *File, v string) error { f.DatabasePath = v; return nil },
	"rehydrate_turns":        intSetter(func(f *File) *int { return &f.RehydrateTurns }),
	"voice_output":           boolSetter(func(f *File) *bool { return &f.VoiceOutput }),
	"voice_command":          func(f *File, v string) error { f.VoiceCommand = v; return nil },
	"voice_rate":             intSetter(func(f *File) *int { return &f.VoiceRate }),
}

func intSetter(field func(*File) *int) func(*File, string) error {
	return func(f *File, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(f) = n
		return nil
	}
}

func boolSetter(field func(*File) *bool) func(*File, string) error {
	return func(f *File, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(f) = b
		return nil
	}
}

// applyEnv overlays environment variables onto the document.
func (f *File) applyEnv() error {
	overrideString(&f.OpenAIAPIKey, "OPENAI_API_KEY")
	overrideString(&f.LlamaModelPath, "LLAMA_MODEL_PATH")
	overrideString(&f.RemoteProvider, "REMOTE_PROVIDER")
	overrideString(&f.RemoteModel, "REMOTE_MODEL")
	overrideString(&f.RemoteBaseURL, "REMOTE_BASE_URL")
	overrideString(&f.RemoteRegion, "ARK_REGION")
	overrideString(&f.LlamaCommand, "LLAMA_COMMAND")
	overrideString(&f.DefaultBackend, "DEFAULT_BACKEND")
	overrideString(&f.Persona, "JARVIS_PERSONA")
	overrideString(&f.DatabasePath, "DATABASE_PATH")
	overrideString(&f.VoiceCommand, "VOICE_COMMAND")

	ints := []struct {
		key   string
		field *int
	}{
		{"REMOTE_TIMEOUT_SECONDS", &f.RemoteTimeoutSeconds},
		{"LLAMA_TIMEOUT_SECONDS", &f.LlamaTimeoutSeconds},
		{"REHYDRATE_TURNS", &f.RehydrateTurns},
		{"VOICE_RATE", &f.VoiceRate},
	}
	for _, item := range ints {
		val, err := parseOptionalIntEnv(item.key)
		if err != nil {
			return err
		}
		if val != nil {
			*item.field = *val
		}
	}

	bools := []struct {
		key   string
		field *bool
	}{
		{"LLAMA_FLATTEN_HISTORY", &f.LlamaFlattenHistory},
		{"VOICE_OUTPUT", &f.VoiceOutput},
	}
	for _, item := range bools {
		val, err := parseOptionalBoolEnv(item.key)
		if err != nil {
			return err
		}
		if val != nil {
			*item.field = *val
		}
	}
	return nil
}

func overrideString(field *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*field = value
	}
}

// resolve applies defaults and validates the document.
func (f File) resolve() (*Config, error) {
	provider := strings.ToLower(orDefault(f.RemoteProvider, DefaultRemoteProvider))
	switch provider {
	case "openai", "ark", "gemini", "mock":
	default:
		return nil, fmt.Errorf("invalid remote_provider %q: want openai, ark, gemini or mock", f.RemoteProvider)
	}

	if f.RehydrateTurns < 0 {
		return nil, fmt.Errorf("invalid rehydrate_turns %d: must not be negative", f.RehydrateTurns)
	}
	rehydrate := f.RehydrateTurns
	if rehydrate == 0 {
		rehydrate = DefaultRehydrateTurns
	}

	voiceRate := f.VoiceRate
	if voiceRate <= 0 {
		voiceRate = DefaultVoiceRate
	}

	return &Config{
		Remote: RemoteConfig{
			Provider: provider,
			APIKey:   strings.TrimSpace(f.OpenAIAPIKey),
			Model:    f.RemoteModel,
			BaseURL:  f.RemoteBaseURL,
			Region:   f.RemoteRegion,
			Timeout:  seconds(f.RemoteTimeoutSeconds, DefaultRemoteTimeout),
		},
		Local: LocalConfig{
			ModelPath:      strings.TrimSpace(f.LlamaModelPath),
			Command:        f.LlamaCommand,
			Timeout:        seconds(f.LlamaTimeoutSeconds, DefaultLocalTimeout),
			FlattenHistory: f.LlamaFlattenHistory,
		},
		Chat: ChatConfig{
			DefaultBackend: orDefault(f.DefaultBackend, DefaultBackend),
			Persona:        f.Persona,
			RehydrateTurns: rehydrate,
		},
		Store: StoreConfig{Path: orDefault(f.DatabasePath, DefaultDatabasePath)},
		Voice: VoiceConfig{
			Enabled: f.VoiceOutput,
			Command: orDefault(f.VoiceCommand, DefaultVoiceCommand),
			Rate:    voiceRate,
		},
	}, nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
