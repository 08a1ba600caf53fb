package main

import (
	"github.com/urfave/cli/v2"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the effective configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the merged configuration (file, environment, defaults) as YAML",
				Action: func(c *cli.Context) error {
					data, err := configFrom(c).Dump()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					_, err = c.App.Writer.Write(data)
					return err
				},
			},
		},
	}
}
