package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

type DropCommand struct{}

func (c *DropCommand) Help() string {
	helpText := `
Usage: db2-adapter drop [options] <model> ...

  Drop the tables backing the named models. Dropping a table that does
  not exist is not an error. Pass -all to drop every registered model.

Options:

  -config=dbconfig.yml   Configuration file to use.
  -env="development"     Environment to use.
  -all                   Drop every registered model's table.
  -trace                 Log statements as they run.

`
	return strings.TrimSpace(helpText)
}

func (c *DropCommand) Synopsis() string {
	return "Drop model tables"
}

func (c *DropCommand) Run(args []string) int {
	cmdFlags := flag.NewFlagSet("drop", flag.ContinueOnError)
	cmdFlags.Usage = func() { ui.Output(c.Help()) }
	ConfigFlags(cmdFlags)
	all := cmdFlags.Bool("all", false, "Drop every registered model's table.")

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
	if *all {
		names = adapter.Registry().Names()
	}

	if len(names) == 0 {
		ui.Error("Name at least one model, or pass -all.")
		return 1
	}

	ctx := context.Background()

	for _, name := range names {
		if err := adapter.Migrator().DropTable(ctx, name); err != nil {
			ui.Error(err.Error())
			return 1
		}
	}

	ui.Output(fmt.Sprintf("Dropped %d model(s)", len(names)))

	return 0
}
