package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
)

type StatusCommand struct{}

func (c *StatusCommand) Help() string {
	helpText := `
Usage: db2-adapter status [options] ...

  Show whether each registered model's table matches its definition.

Options:

  -config=dbconfig.yml   Configuration file to use.
  -env="development"     Environment to use.
  -trace                 Log statements as they run.

`
	return strings.TrimSpace(helpText)
}

func (c *StatusCommand) Synopsis() string {
	return "Show per-model schema status"
}

func (c *StatusCommand) Run(args []string) int {
	cmdFlags := flag.NewFlagSet("status", flag.ContinueOnError)
	cmdFlags.Usage = func() { ui.Output(c.Help()) }
	ConfigFlags(cmdFlags)

	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}

	env, err := GetEnvironment()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	adapter, err := GetAdapter(env)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer adapter.Close()

	registry := adapter.Registry()
	ctx := context.Background()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Model", "Table", "Actual"})
	table.SetColWidth(60)

	for _, name := range registry.Names() {
		def, err := registry.Definition(name)
		if err != nil {
			ui.Error(err.Error())
			return 1
		}

		actual, err := adapter.IsActual(ctx, name)
		if err != nil {
			ui.Error(err.Error())
			return 1
		}

		state := "no"
		if actual {
			state = "yes"
		}

		table.Append([]string{name, def.TableName(), state})
	}

	table.Render()

	return 0
}
