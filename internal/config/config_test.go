package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8007", cfg.AnalysisBaseURL)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize)
	assert.True(t, cfg.HistoryEnabled())
	assert.False(t, cfg.ArchiveEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ANALYSIS_BASE_URL", "http://analysis.internal:9000/")
	t.Setenv("ANALYSIS_TIMEOUT", "5s")
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("S3_ENDPOINT", "minio:9000")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://analysis.internal:9000", cfg.AnalysisBaseURL)
	assert.Equal(t, 5*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, int64(1024), cfg.MaxFileSize)
	assert.False(t, cfg.HistoryEnabled())
	assert.True(t, cfg.ArchiveEnabled())
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"relative base url": {"ANALYSIS_BASE_URL", "localhost"},
		"bad timeout":       {"ANALYSIS_TIMEOUT", "soon"},
		"zero file size":    {"MAX_FILE_SIZE", "0"},
		"bad ttl":           {"VIEW_TTL", "-"},
		"zero sweep":        {"VIEW_SWEEP_INTERVAL", "0s"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
