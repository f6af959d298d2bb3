package operations

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/evergreen-ci/docmigrate"
	"github.com/evergreen-ci/docmigrate/migrations"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/recovery"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const closeTimeout = 10 * time.Second

func Migrate() cli.Command {
	return cli.Command{
		Name:  "migrate",
		Usage: "run every schema migration step against the store",
		Flags: envFileFlag(),
		Action: func(c *cli.Context) error {
			defer recovery.LogStackTraceAndExit("migration")

			settings, err := docmigrate.LoadSettings(c.StringSlice(envFileFlagName)...)
			grip.EmergencyFatal(errors.Wrap(err, "problem loading settings"))
			grip.EmergencyFatal(errors.Wrap(settings.Validate(), "problem validating settings"))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, err := docmigrate.NewEnvironment(ctx, settings)
			grip.EmergencyFatal(errors.Wrap(err, "problem configuring application environment"))

			grip.Notice(message.Fields{
				"message":  "starting migration",
				"build":    docmigrate.BuildRevision,
				"process":  grip.Name(),
				"database": settings.Database,
			})

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, shutdownSignals...)
			defer signal.Stop(sigChan)

			return runMigrations(ctx, env, migrations.DefaultChain(), settings.Timeout(), sigChan)
		},
	}
}

// runMigrations runs the chain under the run controller, closes the
// environment, and converts a non-successful outcome into an exit error
// carrying the outcome's code.
func runMigrations(ctx context.Context, env docmigrate.Environment, chain migrations.Chain, timeout time.Duration, signals <-chan os.Signal) error {
	res := migrations.Run(ctx, migrations.RunOptions{
		Chain:   chain,
		Store:   env.Store(),
		Timeout: timeout,
		Signals: signals,
	})

	closeCtx, closeCancel := context.WithTimeout(context.Background(), closeTimeout)
	defer closeCancel()
	grip.Warning(message.WrapError(env.Close(closeCtx), "problem closing environment"))

	if code := res.Outcome.ExitCode(); code != 0 {
		return cli.NewExitError("", code)
	}

	return nil
}
