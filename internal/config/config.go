package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey is fatal at startup: the completion service cannot be
// reached without a credential.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY must be set")

// Error reports a malformed configuration value.
type Error struct {
	Key   string
	Value string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config is the process configuration, read from the environment.
type Config struct {
	Port string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	UseMockLLM    bool

	PlanMaxTokens     int
	Temperature       float32
	CompletionTimeout time.Duration

	PatientRecordsFile string
	PatientDatabaseURL string

	SessionIdleTTL time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads the configuration using os.Getenv.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv, which makes it testable
// without touching the process environment.
func LoadFrom(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:               env("PORT", "8080"),
		OpenAIAPIKey:       env("OPENAI_API_KEY", ""),
		OpenAIModel:        env("OPENAI_MODEL_CHAT", "gpt-4"),
		OpenAIBaseURL:      env("OPENAI_BASE_URL", ""),
		PatientRecordsFile: env("PATIENT_RECORDS_FILE", ""),
		PatientDatabaseURL: env("PATIENT_DATABASE_URL", ""),
		LogLevel:           strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(env("LOG_FORMAT", "json")),
	}

	var err error
	if cfg.UseMockLLM, err = parseBool("VISITPREP_USE_MOCK_LLM", env("VISITPREP_USE_MOCK_LLM", "false")); err != nil {
		return nil, err
	}
	if cfg.PlanMaxTokens, err = parseInt("PLAN_MAX_TOKENS", env("PLAN_MAX_TOKENS", "150")); err != nil {
		return nil, err
	}
	if cfg.Temperature, err = parseFloat("COMPLETION_TEMPERATURE", env("COMPLETION_TEMPERATURE", "0.7")); err != nil {
		return nil, err
	}
	if cfg.CompletionTimeout, err = parseDuration("COMPLETION_TIMEOUT", env("COMPLETION_TIMEOUT", "30s")); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = parseDuration("SESSION_IDLE_TTL", env("SESSION_IDLE_TTL", "2h")); err != nil {
		return nil, err
	}

	if cfg.PlanMaxTokens <= 0 {
		return nil, &Error{Key: "PLAN_MAX_TOKENS", Value: strconv.Itoa(cfg.PlanMaxTokens), Err: errors.New("must be positive")}
	}
	if cfg.Temperature <= 0 || cfg.Temperature > 2 {
		return nil, &Error{
			Key:   "COMPLETION_TEMPERATURE",
			Value: strconv.FormatFloat(float64(cfg.Temperature), 'f', -1, 32),
			Err:   errors.New("must be in (0, 2]"),
		}
	}
	if cfg.CompletionTimeout <= 0 {
		return nil, &Error{Key: "COMPLETION_TIMEOUT", Value: cfg.CompletionTimeout.String(), Err: errors.New("must be positive")}
	}
	if cfg.OpenAIAPIKey == "" && !cfg.UseMockLLM {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

func parseBool(key, v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, &Error{Key: key, Value: v, Err: errors.New("not a boolean")}
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &Error{Key: key, Value: v, Err: err}
	}
	return n, nil
}

func parseFloat(key, v string) (float32, error) {
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, &Error{Key: key, Value: v, Err: err}
	}
	return float32(f), nil
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &Error{Key: key, Value: v, Err: err}
	}
	return d, nil
}
