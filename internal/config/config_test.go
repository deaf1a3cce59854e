package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{"OPENAI_API_KEY": "sk-test"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-4", cfg.OpenAIModel)
	assert.Equal(t, 150, cfg.PlanMaxTokens)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-6)
	assert.Equal(t, 30*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.UseMockLLM)
}

func TestLoadMissingAPIKey(t *testing.T) {
	_, err := LoadFrom(envMap(nil))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoadMockDoesNotNeedKey(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{"VISITPREP_USE_MOCK_LLM": "1"}))
	require.NoError(t, err)
	assert.True(t, cfg.UseMockLLM)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"OPENAI_API_KEY":         "sk-test",
		"OPENAI_MODEL_CHAT":      "gpt-4o-mini",
		"PORT":                   "9090",
		"COMPLETION_TIMEOUT":     "5s",
		"SESSION_IDLE_TTL":       "0",
		"PATIENT_RECORDS_FILE":   "/etc/visitprep/patients.yaml",
		"COMPLETION_TEMPERATURE": "0.2",
		"LOG_LEVEL":              "DEBUG",
	}))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.CompletionTimeout)
	assert.Zero(t, cfg.SessionIdleTTL)
	assert.Equal(t, "/etc/visitprep/patients.yaml", cfg.PatientRecordsFile)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-6)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMalformedValues(t *testing.T) {
	cases := map[string]string{
		"PLAN_MAX_TOKENS":        "lots",
		"COMPLETION_TIMEOUT":     "soon",
		"COMPLETION_TEMPERATURE": "warm",
		"VISITPREP_USE_MOCK_LLM": "maybe",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			_, err := LoadFrom(envMap(map[string]string{"OPENAI_API_KEY": "sk-test", key: val}))
			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, key, cerr.Key)
		})
	}
}

func TestLoadRejectsNonPositiveTokens(t *testing.T) {
	_, err := LoadFrom(envMap(map[string]string{"OPENAI_API_KEY": "sk-test", "PLAN_MAX_TOKENS": "0"}))
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
}

func TestLoadRejectsTemperatureOutOfRange(t *testing.T) {
	for _, v := range []string{"0", "-0.5", "2.5", "5"} {
		t.Run(v, func(t *testing.T) {
			_, err := LoadFrom(envMap(map[string]string{"OPENAI_API_KEY": "sk-test", "COMPLETION_TEMPERATURE": v}))
			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "COMPLETION_TEMPERATURE", cerr.Key)
		})
	}

	cfg, err := LoadFrom(envMap(map[string]string{"OPENAI_API_KEY": "sk-test", "COMPLETION_TEMPERATURE": "2"}))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, cfg.Temperature, 1e-6)
}
