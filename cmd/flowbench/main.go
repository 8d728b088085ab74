// Command flowbench runs built-in pipeline scenarios on a worker pool and
// reports queue usage, optionally exposing Prometheus metrics while it runs.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ygrebnov/flow/internal/config"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "flowbench:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	env, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "flowbench: ignoring environment:", err)
		env = config.Default()
	}

	return &cli.App{
		Name:    "flowbench",
		Usage:   "run dataflow pipeline scenarios",
		Version: version,
		Commands: []*cli.Command{
			runCommand(env),
			{
				Name:  "scenarios",
				Usage: "list the available scenarios",
				Action: func(c *cli.Context) error {
					for _, s := range scenarios {
						fmt.Fprintf(c.App.Writer, "%-10s %s\n", s.name, s.help)
					}
					return nil
				},
			},
		},
	}
}
