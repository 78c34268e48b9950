package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

type AutomigrateCommand struct{}

func (c *AutomigrateCommand) Help() string {
	helpText := `
Usage: db2-adapter automigrate [options] [model ...]

  Drop and recreate tables for the named models, or for every registered
  model when none are named. Existing data in those tables is lost.

Options:

  -config=dbconfig.yml   Configuration file to use.
  -env="development"     Environment to use.
  -trace                 Log statements as they run.

`
	return strings.TrimSpace(helpText)
}

func (c *AutomigrateCommand) Synopsis() string {
	return "Drop and recreate model tables"
}

func (c *AutomigrateCommand) Run(args []string) int {
	cmdFlags := flag.NewFlagSet("automigrate", flag.ContinueOnError)
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

	names := cmdFlags.Args()
	if len(names) == 0 {
		names = adapter.Registry().Names()
	}

	if err := adapter.Automigrate(context.Background(), names...); err != nil {
		ui.Error(err.Error())
		return 1
	}

	ui.Output(fmt.Sprintf("Migrated %d model(s)", len(names)))

	return 0
}
