package operations

import (
	"strings"

	"github.com/urfave/cli"
)

const (
	envFileFlagName = "env-file"
)

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

func envFileFlag(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringSliceFlag{
		Name:  joinFlagNames(envFileFlagName, "e"),
		Usage: "dotenv file to load before reading the environment; may specify more than once (default: .env)",
	})
}
