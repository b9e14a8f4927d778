package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type Config struct {
	RuntimeName string          `yaml:"runtime_name"`
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Bus         BusConfig       `yaml:"bus"`
	Synthesis   SynthesisConfig `yaml:"synthesis"`
	Enhancer    EnhancerConfig  `yaml:"enhancer"`
	Encoder     EncoderConfig   `yaml:"encoder"`
	Speakers    SpeakersConfig  `yaml:"speakers"`
	Styles      StylesConfig    `yaml:"styles"`
	History     HistoryConfig   `yaml:"history"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
	StoreDir       string   `yaml:"store_dir"`
}

type SynthesisConfig struct {
	Mode               string `yaml:"mode"`
	Command            string `yaml:"command"`
	SampleRate         int    `yaml:"sample_rate"`
	BatchSize          int    `yaml:"batch_size"`
	SplitThreshold     int    `yaml:"split_threshold"`
	MaxTotalChars      int    `yaml:"max_total_chars"`
	DefaultSpeakerSeed int64  `yaml:"default_speaker_seed"`
	TimeoutMS          int    `yaml:"timeout_ms"`
}

type EnhancerConfig struct {
	Mode    string `yaml:"mode"`
	Command string `yaml:"command"`
}

type EncoderConfig struct {
	Command        string `yaml:"command"`
	DefaultFormat  string `yaml:"default_format"`
	DefaultBitrate string `yaml:"default_bitrate"`
}

type SpeakersConfig struct {
	Directory string `yaml:"directory"`
}

type StylesConfig struct {
	Path string `yaml:"path"`
}

type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
	MaxRequests   int    `yaml:"max_requests"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

func Default() Config {
	return Config{
		RuntimeName: "auris-runtime",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9091",
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
			StoreDir:       "./data/nats",
		},
		Synthesis: SynthesisConfig{
			Mode:               "mock",
			SampleRate:         24000,
			BatchSize:          4,
			SplitThreshold:     100,
			MaxTotalChars:      1000,
			DefaultSpeakerSeed: 2,
			TimeoutMS:          120000,
		},
		Enhancer: EnhancerConfig{
			Mode: "mock",
		},
		Encoder: EncoderConfig{
			DefaultFormat:  "wav",
			DefaultBitrate: "128k",
		},
		Speakers: SpeakersConfig{
			Directory: "./data/speakers",
		},
		Styles: StylesConfig{
			Path: "",
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "./data/auris-history.db",
			RetentionDays: 30,
			MaxRequests:   10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "AURIS_RUNTIME_NAME")
	overrideString(&cfg.Environment, "AURIS_RUNTIME_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "AURIS_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "AURIS_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "AURIS_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "AURIS_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "AURIS_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "AURIS_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Embedded, "AURIS_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "AURIS_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "AURIS_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "AURIS_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "AURIS_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "AURIS_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "AURIS_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "AURIS_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.Bus.StoreDir, "AURIS_BUS_STORE_DIR")
	overrideString(&cfg.Synthesis.Mode, "AURIS_SYNTHESIS_MODE")
	overrideString(&cfg.Synthesis.Command, "AURIS_SYNTHESIS_COMMAND")
	overrideInt(&cfg.Synthesis.SampleRate, "AURIS_SYNTHESIS_SAMPLE_RATE")
	overrideInt(&cfg.Synthesis.BatchSize, "AURIS_SYNTHESIS_BATCH_SIZE")
	overrideInt(&cfg.Synthesis.SplitThreshold, "AURIS_SYNTHESIS_SPLIT_THRESHOLD")
	overrideInt(&cfg.Synthesis.MaxTotalChars, "AURIS_SYNTHESIS_MAX_TOTAL_CHARS")
	overrideInt64(&cfg.Synthesis.DefaultSpeakerSeed, "AURIS_SYNTHESIS_DEFAULT_SPEAKER_SEED")
	overrideInt(&cfg.Synthesis.TimeoutMS, "AURIS_SYNTHESIS_TIMEOUT_MS")
	overrideString(&cfg.Enhancer.Mode, "AURIS_ENHANCER_MODE")
	overrideString(&cfg.Enhancer.Command, "AURIS_ENHANCER_COMMAND")
	overrideString(&cfg.Encoder.Command, "AURIS_ENCODER_COMMAND")
	overrideString(&cfg.Encoder.DefaultFormat, "AURIS_ENCODER_DEFAULT_FORMAT")
	overrideString(&cfg.Encoder.DefaultBitrate, "AURIS_ENCODER_DEFAULT_BITRATE")
	overrideString(&cfg.Speakers.Directory, "AURIS_SPEAKERS_DIRECTORY")
	overrideString(&cfg.Styles.Path, "AURIS_STYLES_PATH")
	overrideBool(&cfg.History.Enabled, "AURIS_HISTORY_ENABLED")
	overrideString(&cfg.History.Path, "AURIS_HISTORY_PATH")
	overrideInt(&cfg.History.RetentionDays, "AURIS_HISTORY_RETENTION_DAYS")
	overrideInt(&cfg.History.MaxRequests, "AURIS_HISTORY_MAX_REQUESTS")
	overrideBool(&cfg.History.VacuumOnStart, "AURIS_HISTORY_VACUUM_ON_START")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideInt64(target *int64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else {
		if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	switch cfg.Synthesis.Mode {
	case "mock", "exec":
	default:
		return errors.New("synthesis.mode must be one of mock|exec")
	}
	if cfg.Synthesis.Mode == "exec" && cfg.Synthesis.Command == "" {
		return errors.New("synthesis.command must be set when mode=exec")
	}
	if cfg.Synthesis.SampleRate <= 0 {
		return errors.New("synthesis.sample_rate must be positive")
	}
	if cfg.Synthesis.BatchSize <= 0 {
		return errors.New("synthesis.batch_size must be >= 1")
	}
	if cfg.Synthesis.MaxTotalChars <= 0 {
		return errors.New("synthesis.max_total_chars must be positive")
	}
	switch cfg.Enhancer.Mode {
	case "mock", "exec":
	default:
		return errors.New("enhancer.mode must be one of mock|exec")
	}
	if cfg.Enhancer.Mode == "exec" && cfg.Enhancer.Command == "" {
		return errors.New("enhancer.command must be set when mode=exec")
	}
	if cfg.Encoder.DefaultFormat == "" {
		return errors.New("encoder.default_format must not be empty")
	}
	if cfg.Speakers.Directory == "" {
		return errors.New("speakers.directory must not be empty")
	}
	if cfg.History.Enabled {
		if cfg.History.Path == "" {
			return errors.New("history.path must not be empty when history is enabled")
		}
		if cfg.History.RetentionDays < 0 {
			return errors.New("history.retention_days must be >= 0")
		}
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	return nil
}
