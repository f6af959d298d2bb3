package docmigrate

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Settings is the process configuration, read from the environment.
type Settings struct {
	// URI is the store connection string.
	URI string `env:"STORE_URI"`
	// LegacyURI is used when URI is unset.
	LegacyURI string `env:"MONGODB_URI"`
	// Database defaults to the database named in the URI, then to
	// DefaultDatabase.
	Database string `env:"STORE_DATABASE"`
	// TimeoutSecs is kept raw so that a bad value can be reported as a
	// warning rather than failing the process.
	TimeoutSecs string `env:"MIGRATION_TIMEOUT_SECS"`
	// ConnectTimeoutSecs bounds connecting to and each ping of the store.
	ConnectTimeoutSecs int `env:"STORE_CONNECT_TIMEOUT_SECS" envDefault:"30"`
	// ConnectAttempts is how many times the initial ping is tried.
	ConnectAttempts int `env:"STORE_CONNECT_ATTEMPTS" envDefault:"3"`

	// TraceCollectorEndpoint is an OTLP gRPC endpoint. Traces and metrics
	// are only exported when it is set.
	TraceCollectorEndpoint string `env:"OTEL_COLLECTOR_ENDPOINT"`
	TraceCollectorInsecure bool   `env:"OTEL_COLLECTOR_INSECURE"`
}

// LoadSettings reads settings from the process environment after loading
// any of the given dotenv files that exist. With no files, ".env" in the
// working directory is tried. Variables already set in the environment are
// never overridden by a file.
func LoadSettings(envFiles ...string) (*Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, fn := range envFiles {
		if err := godotenv.Load(fn); err != nil {
			if os.IsNotExist(errors.Cause(err)) {
				continue
			}
			return nil, errors.Wrapf(err, "loading env file '%s'", fn)
		}
		grip.Debug(message.Fields{
			"message": "loaded env file",
			"file":    fn,
		})
	}

	settings := &Settings{}
	if err := env.Parse(settings); err != nil {
		return nil, errors.Wrap(err, "parsing settings from environment")
	}

	return settings, nil
}

// NewSettingsFromMap parses settings from an explicit set of variables
// instead of the process environment.
func NewSettingsFromMap(vars map[string]string) (*Settings, error) {
	settings := &Settings{}
	if err := env.ParseWithOptions(settings, env.Options{Environment: vars}); err != nil {
		return nil, errors.Wrap(err, "parsing settings")
	}

	return settings, nil
}

// Validate checks that a store URI is present and fills in the database
// name. It is safe to call more than once.
func (s *Settings) Validate() error {
	s.URI = strings.TrimSpace(s.URI)
	if s.URI == "" {
		s.URI = strings.TrimSpace(s.LegacyURI)
	}
	if s.URI == "" {
		return errors.New("STORE_URI must be set")
	}

	if s.Database == "" {
		cs, err := connstring.Parse(s.URI)
		if err != nil {
			return errors.Wrap(err, "parsing store URI")
		}
		s.Database = cs.Database
	}
	if s.Database == "" {
		s.Database = DefaultDatabase
	}

	if s.ConnectTimeoutSecs <= 0 {
		s.ConnectTimeoutSecs = DefaultConnectTimeoutSecs
	}
	if s.ConnectAttempts <= 0 {
		s.ConnectAttempts = DefaultConnectAttempts
	}
	s.TraceCollectorEndpoint = strings.TrimSpace(s.TraceCollectorEndpoint)

	return nil
}

// Timeout returns the migration run bound. A missing, unparsable or
// non-positive MIGRATION_TIMEOUT_SECS yields zero, meaning no bound; the
// latter two are logged as warnings.
func (s *Settings) Timeout() time.Duration {
	raw := strings.TrimSpace(s.TimeoutSecs)
	if raw == "" {
		return 0
	}

	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		grip.Warning(message.WrapError(err, message.Fields{
			"message": "failed to parse MIGRATION_TIMEOUT_SECS; ignoring",
			"value":   raw,
		}))
		return 0
	}
	if secs <= 0 {
		grip.Warning(message.Fields{
			"message": "MIGRATION_TIMEOUT_SECS provided but not > 0; ignoring",
			"value":   raw,
		})
		return 0
	}

	return time.Duration(secs) * time.Second
}

func (s *Settings) ConnectTimeout() time.Duration {
	if s.ConnectTimeoutSecs <= 0 {
		return DefaultConnectTimeoutSecs * time.Second
	}
	return time.Duration(s.ConnectTimeoutSecs) * time.Second
}
