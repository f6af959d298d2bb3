package docmigrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsFromMap(t *testing.T) {
	settings, err := NewSettingsFromMap(map[string]string{
		"STORE_URI":               "mongodb://localhost:27017/exams",
		"STORE_DATABASE":          "staging",
		"MIGRATION_TIMEOUT_SECS":  "120",
		"OTEL_COLLECTOR_ENDPOINT": "collector:4317",
		"OTEL_COLLECTOR_INSECURE": "true",
	})
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/exams", settings.URI)
	assert.Equal(t, "staging", settings.Database)
	assert.Equal(t, "120", settings.TimeoutSecs)
	assert.Equal(t, DefaultConnectTimeoutSecs, settings.ConnectTimeoutSecs)
	assert.Equal(t, DefaultConnectAttempts, settings.ConnectAttempts)
	assert.Equal(t, "collector:4317", settings.TraceCollectorEndpoint)
	assert.True(t, settings.TraceCollectorInsecure)

	_, err = NewSettingsFromMap(map[string]string{"STORE_CONNECT_TIMEOUT_SECS": "soon"})
	assert.Error(t, err)
}

func TestSettingsValidate(t *testing.T) {
	for name, test := range map[string]struct {
		vars     map[string]string
		uri      string
		database string
		valid    bool
	}{
		"MissingURI": {
			vars:  map[string]string{},
			valid: false,
		},
		"BlankURI": {
			vars:  map[string]string{"STORE_URI": "   "},
			valid: false,
		},
		"DatabaseFromURI": {
			vars:     map[string]string{"STORE_URI": "mongodb://localhost:27017/exams"},
			uri:      "mongodb://localhost:27017/exams",
			database: "exams",
			valid:    true,
		},
		"DefaultDatabase": {
			vars:     map[string]string{"STORE_URI": "mongodb://localhost:27017"},
			uri:      "mongodb://localhost:27017",
			database: DefaultDatabase,
			valid:    true,
		},
		"ExplicitDatabaseWins": {
			vars:     map[string]string{"STORE_URI": "mongodb://localhost:27017/exams", "STORE_DATABASE": "other"},
			uri:      "mongodb://localhost:27017/exams",
			database: "other",
			valid:    true,
		},
		"LegacyURIFallback": {
			vars:     map[string]string{"MONGODB_URI": "mongodb://legacy:27017/fcc"},
			uri:      "mongodb://legacy:27017/fcc",
			database: "fcc",
			valid:    true,
		},
		"PreferStoreURI": {
			vars:     map[string]string{"STORE_URI": "mongodb://primary:27017", "MONGODB_URI": "mongodb://legacy:27017"},
			uri:      "mongodb://primary:27017",
			database: DefaultDatabase,
			valid:    true,
		},
		"MalformedURI": {
			vars:  map[string]string{"STORE_URI": "postgres://localhost"},
			valid: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			settings, err := NewSettingsFromMap(test.vars)
			require.NoError(t, err)

			err = settings.Validate()
			if !test.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.uri, settings.URI)
			assert.Equal(t, test.database, settings.Database)
			assert.Equal(t, 30*time.Second, settings.ConnectTimeout())

			require.NoError(t, settings.Validate(), "validate must be repeatable")
			assert.Equal(t, test.database, settings.Database)
		})
	}
}

func TestSettingsTimeout(t *testing.T) {
	for raw, expected := range map[string]time.Duration{
		"":       0,
		"   ":    0,
		"120":    2 * time.Minute,
		" 5 ":    5 * time.Second,
		"0":      0,
		"-10":    0,
		"ten":    0,
		"1.5":    0,
		"9e9999": 0,
	} {
		t.Run(raw, func(t *testing.T) {
			settings := &Settings{TimeoutSecs: raw}
			assert.Equal(t, expected, settings.Timeout())
		})
	}
}

func TestLoadSettings(t *testing.T) {
	keys := []string{
		"STORE_URI", "MONGODB_URI", "STORE_DATABASE", "MIGRATION_TIMEOUT_SECS",
		"STORE_CONNECT_TIMEOUT_SECS", "STORE_CONNECT_ATTEMPTS",
		"OTEL_COLLECTOR_ENDPOINT", "OTEL_COLLECTOR_INSECURE",
	}
	clearEnv := func(t *testing.T) {
		for _, k := range keys {
			// registers restoration of the original value
			t.Setenv(k, "")
			require.NoError(t, os.Unsetenv(k))
		}
	}

	t.Run("ReadsEnvFile", func(t *testing.T) {
		clearEnv(t)
		fn := filepath.Join(t.TempDir(), "migrate.env")
		require.NoError(t, os.WriteFile(fn, []byte("STORE_URI=mongodb://file:27017/exams\nMIGRATION_TIMEOUT_SECS=60\n"), 0600))

		settings, err := LoadSettings(fn)
		require.NoError(t, err)
		assert.Equal(t, "mongodb://file:27017/exams", settings.URI)
		assert.Equal(t, time.Minute, settings.Timeout())
	})
	t.Run("EnvironmentWinsOverFile", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_URI", "mongodb://env:27017")
		fn := filepath.Join(t.TempDir(), "migrate.env")
		require.NoError(t, os.WriteFile(fn, []byte("STORE_URI=mongodb://file:27017\n"), 0600))

		settings, err := LoadSettings(fn)
		require.NoError(t, err)
		assert.Equal(t, "mongodb://env:27017", settings.URI)
	})
	t.Run("MissingFileIsIgnored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_URI", "mongodb://env:27017")

		settings, err := LoadSettings(filepath.Join(t.TempDir(), "absent.env"))
		require.NoError(t, err)
		assert.Equal(t, "mongodb://env:27017", settings.URI)
	})
	t.Run("MalformedFileFails", func(t *testing.T) {
		clearEnv(t)
		fn := filepath.Join(t.TempDir(), "broken.env")
		require.NoError(t, os.WriteFile(fn, []byte("STORE_URI='unterminated\n"), 0600))

		_, err := LoadSettings(fn)
		assert.Error(t, err)
	})
}
