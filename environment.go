package docmigrate

import (
	"context"
	"sync"
	"time"

	"github.com/evergreen-ci/docmigrate/db"
	"github.com/jpillora/backoff"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Environment provides the process-level services a migration run needs: the
// validated settings and a connected store.
type Environment interface {
	// Settings returns the settings the environment was built from.
	Settings() *Settings

	Client() *mongo.Client
	DB() *mongo.Database
	// Store returns the migration view of DB.
	Store() db.Store

	// RegisterCloser adds a named teardown function. A second closer with
	// the same name is ignored.
	RegisterCloser(string, func(context.Context) error)
	// Close runs every registered closer and returns their combined error.
	Close(context.Context) error
}

// NewEnvironment validates the settings, sets up telemetry export when a
// collector is configured, connects to the store and verifies the connection
// with a ping. Close disconnects the client and flushes telemetry.
func NewEnvironment(ctx context.Context, settings *Settings) (Environment, error) {
	if settings == nil {
		return nil, errors.New("settings must not be nil")
	}
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}

	e := &envState{settings: settings}

	if err := e.initTelemetry(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing telemetry")
	}
	if err := e.initDB(ctx); err != nil {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settings.ConnectTimeout())
		defer cancel()
		grip.Warning(message.WrapError(e.Close(closeCtx), "closing partially initialized environment"))
		return nil, errors.WithStack(err)
	}

	return e, nil
}

type envState struct {
	settings *Settings
	client   *mongo.Client
	mu       sync.RWMutex
	closers  []namedCloser
}

type namedCloser struct {
	name  string
	close func(context.Context) error
}

func (e *envState) initDB(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(e.settings.URI).
		SetConnectTimeout(e.settings.ConnectTimeout())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "connecting to the store")
	}

	if err = ping(ctx, client, e.settings.ConnectAttempts, e.settings.ConnectTimeout()); err != nil {
		grip.Warning(message.WrapError(client.Disconnect(context.WithoutCancel(ctx)), "disconnecting after failed ping"))
		return errors.Wrap(err, "pinging the store")
	}

	grip.Info(message.Fields{
		"message":  "connected to store",
		"database": e.settings.Database,
	})

	e.client = client
	e.RegisterCloser("store-client", func(ctx context.Context) error {
		return errors.Wrap(client.Disconnect(ctx), "disconnecting from the store")
	})

	return nil
}

// ping checks the deployment with the admin ping command, retrying with
// exponential backoff up to the given number of attempts.
func ping(ctx context.Context, client *mongo.Client, attempts int, timeout time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	b := &backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = client.Database("admin").RunCommand(pingCtx, bson.D{{Key: "ping", Value: 1}}).Err()
		cancel()
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}

		wait := b.Duration()
		grip.Warning(message.WrapError(err, message.Fields{
			"message":   "store ping failed, retrying",
			"attempt":   i,
			"max":       attempts,
			"wait_secs": wait.Seconds(),
		}))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrapf(ctx.Err(), "waiting to retry ping after attempt %d", i)
		case <-timer.C:
		}
	}

	return errors.Wrapf(err, "store unreachable after %d attempts", attempts)
}

func (e *envState) Settings() *Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.settings
}

func (e *envState) Client() *mongo.Client {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.client
}

func (e *envState) DB() *mongo.Database {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.client.Database(e.settings.Database)
}

func (e *envState) Store() db.Store {
	return db.NewStore(e.DB())
}

func (e *envState) RegisterCloser(name string, closer func(context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range e.closers {
		if c.name == name {
			grip.Critical(message.Fields{
				"message": "closer already registered, ignoring",
				"closer":  name,
			})
			return
		}
	}
	e.closers = append(e.closers, namedCloser{name: name, close: closer})
}

// Close runs the closers in reverse registration order. Telemetry is
// registered before the store client, so the client is disconnected first and
// telemetry is flushed last. Every closer runs even when an earlier one fails.
func (e *envState) Close(ctx context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	catcher := grip.NewBasicCatcher()
	for i := len(e.closers) - 1; i >= 0; i-- {
		c := e.closers[i]
		if c.close == nil {
			continue
		}
		grip.Debug(message.Fields{
			"message": "running closer",
			"closer":  c.name,
		})
		catcher.Wrapf(c.close(ctx), "closer '%s'", c.name)
	}

	return catcher.Resolve()
}
