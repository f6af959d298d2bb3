package main

import (
	"os"

	"github.com/evergreen-ci/docmigrate"
	"github.com/evergreen-ci/docmigrate/operations"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/send"
	"github.com/urfave/cli"
)

func main() {
	// non-zero run outcomes exit through cli.ExitCoder inside app.Run
	app := buildApp()
	grip.EmergencyFatal(app.Run(os.Args))
}

func buildApp() *cli.App {
	app := cli.NewApp()
	app.Name = "docmigrate"
	app.Usage = "migrate store documents from one schema version to the next"
	app.Version = docmigrate.ClientVersion

	app.Commands = []cli.Command{
		operations.Migrate(),
		operations.List(),
	}

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "level",
			Value:  "info",
			EnvVar: "LOG_LEVEL",
			Usage:  "Specify lowest visible log level as string: 'emergency|alert|critical|error|warning|notice|info|debug|trace'",
		},
	}

	app.Before = func(c *cli.Context) error {
		return loggingSetup(app.Name, c.String("level"))
	}

	return app
}

func loggingSetup(name, l string) error {
	if err := grip.SetSender(send.MakeErrorLogger()); err != nil {
		return err
	}
	grip.SetName(name)

	sender := grip.GetSender()
	info := sender.Level()
	info.Threshold = level.FromString(l)

	return sender.SetLevel(info)
}
