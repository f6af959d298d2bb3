package mock

import (
	"context"
	"sync"

	"github.com/evergreen-ci/docmigrate"
	"github.com/evergreen-ci/docmigrate/db"
	"github.com/mongodb/grip"
	"go.mongodb.org/mongo-driver/mongo"
)

// breaks the build if the mock drifts from docmigrate.Environment
var _ docmigrate.Environment = &Environment{}

// Environment is a docmigrate.Environment over an in-memory Store. It has no
// client or database handle.
type Environment struct {
	MigrationSettings *docmigrate.Settings
	MemStore          *Store

	mu      sync.Mutex
	closers map[string]func(context.Context) error
	closed  int
}

// NewEnvironment returns an environment whose store is empty.
func NewEnvironment() *Environment {
	return &Environment{
		MigrationSettings: &docmigrate.Settings{Database: docmigrate.DefaultDatabase},
		MemStore:          NewStore(),
		closers:           map[string]func(context.Context) error{},
	}
}

func (e *Environment) Settings() *docmigrate.Settings { return e.MigrationSettings }
func (e *Environment) Client() *mongo.Client          { return nil }
func (e *Environment) DB() *mongo.Database            { return nil }
func (e *Environment) Store() db.Store                { return e.MemStore }

func (e *Environment) RegisterCloser(name string, closer func(context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closers[name] = closer
}

// Close runs the registered closers in no particular order and counts the
// call.
func (e *Environment) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed++
	catcher := grip.NewBasicCatcher()
	for _, closer := range e.closers {
		if closer != nil {
			catcher.Add(closer(ctx))
		}
	}
	return catcher.Resolve()
}

// Closed reports how many times Close was called.
func (e *Environment) Closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}
