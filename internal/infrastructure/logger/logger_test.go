package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfigPresets(t *testing.T) {
	t.Run("default is console on stdout", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
		assert.NotEmpty(t, cfg.TimeFormat)
	})

	t.Run("production is json on stdout", func(t *testing.T) {
		cfg := ProductionConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
		assert.NotEmpty(t, cfg.TimeFormat)
	})
}

func TestNew(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
	}{
		{"default config", DefaultConfig()},
		{"production config", ProductionConfig()},
		{"debug console", &Config{Level: "debug", Format: "console", Output: "stdout", TimeFormat: "2006-01-02T15:04:05Z07:00"}},
		{"json format", &Config{Level: "info", Format: "json", Output: "stderr", TimeFormat: "2006-01-02T15:04:05Z07:00"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New(tc.cfg)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseLevel(tc.level))
		})
	}
}

func TestSync(t *testing.T) {
	log, err := New(DefaultConfig())
	require.NoError(t, err)

	// stdout may reject Sync on some platforms; the call must not panic
	_ = Sync(log)
}

func TestBuildSyncer(t *testing.T) {
	for _, output := range []string{"stdout", "stderr", "STDOUT"} {
		t.Run(output, func(t *testing.T) {
			assert.NotNil(t, buildSyncer(output))
		})
	}

	t.Run("file path", func(t *testing.T) {
		tmp, err := os.CreateTemp("", "compucar-log-*.log")
		require.NoError(t, err)
		defer os.Remove(tmp.Name())
		tmp.Close()

		assert.NotNil(t, buildSyncer(tmp.Name()))
	})

	t.Run("unwritable path falls back", func(t *testing.T) {
		assert.NotNil(t, buildSyncer("/proc/nonexistent/app.log"))
	})
}

func TestBuildEncoder(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		assert.NotNil(t, buildEncoder(&Config{Format: "console", TimeFormat: "2006-01-02T15:04:05Z07:00"}))
	})
	t.Run("json", func(t *testing.T) {
		assert.NotNil(t, buildEncoder(&Config{Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"}))
	})
}

func TestJSONOutputShape(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		buildEncoder(&Config{Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"}),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	log := zap.New(core)

	log.Info("tuning file uploaded", zap.String("short_id", "A1B2C3D4"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tuning file uploaded", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "A1B2C3D4", entry["short_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		buildEncoder(&Config{Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"}),
		zapcore.AddSync(&buf),
		parseLevel("info"),
	)
	log := zap.New(core)

	log.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	log.Info("visible")
	assert.Contains(t, buf.String(), "visible")
}
