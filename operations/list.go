package operations

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"github.com/evergreen-ci/docmigrate/migrations"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func List() cli.Command {
	return cli.Command{
		Name:  "list",
		Usage: "displays the migration steps in the order they run",
		Action: func(c *cli.Context) error {
			return printChain(os.Stdout, migrations.DefaultChain())
		},
	}
}

func printChain(w io.Writer, chain migrations.Chain) error {
	if err := chain.Validate(); err != nil {
		return errors.Wrap(err, "invalid migration chain")
	}

	fmt.Fprintf(w, "%d migration steps:\n", len(chain))

	t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
	t.AddHeader("Step", "Source", "Destination")
	for _, m := range chain {
		t.AddLine(m.Name(), m.Source(), m.Destination())
	}
	t.Print()

	return nil
}
