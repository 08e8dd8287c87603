package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// Viper state is global, so these tests run sequentially with a reset
// and a clean working directory each.
func resetEnv(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Chdir(t.TempDir())
}

func TestLoadMissingTokenFails(t *testing.T) {
	resetEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("expected a validation error without a token")
	}
}

func TestLoadDefaultsFromEnv(t *testing.T) {
	resetEnv(t)
	t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.TelegramToken != "123:abc" {
		t.Errorf("token = %q", cfg.TelegramToken)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("listen addr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.DefaultSendTime != DefaultSendTime || cfg.DefaultTimezone != DefaultTimezone {
		t.Errorf("schedule defaults = %q %q", cfg.DefaultSendTime, cfg.DefaultTimezone)
	}
	if cfg.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("history limit = %d, want %d", cfg.HistoryLimit, DefaultHistoryLimit)
	}
	if cfg.BaseURL != "" {
		t.Errorf("base url = %q, want empty for long polling", cfg.BaseURL)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	resetEnv(t)

	yaml := "telegram_token: from-file\nlog_level: debug\nhistory_limit: 25\n"
	if err := os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.TelegramToken != "from-file" {
		t.Errorf("token = %q, want the file value", cfg.TelegramToken)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q, want the env override", cfg.LogLevel)
	}
	if cfg.HistoryLimit != 25 {
		t.Errorf("history limit = %d, want the file value", cfg.HistoryLimit)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown log level", key: "BOT_LOG_LEVEL", value: "verbose"},
		{name: "bad timezone", key: "BOT_DEFAULT_TIMEZONE", value: "Not/AZone"},
		{name: "history limit too large", key: "BOT_HISTORY_LIMIT", value: "1000"},
		{name: "base url not a url", key: "BOT_BASE_URL", value: "not a url"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resetEnv(t)
			t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", tc.key, tc.value)
			}
		})
	}
}
