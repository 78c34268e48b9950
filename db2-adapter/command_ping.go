package main

import (
	"context"
	"flag"
	"strings"
)

type PingCommand struct{}

func (c *PingCommand) Help() string {
	helpText := `
Usage: db2-adapter ping [options] ...

  Verify connectivity to the configured database.

Options:

  -config=dbconfig.yml   Configuration file to use.
  -env="development"     Environment to use.
  -trace                 Log statements as they run.

`
	return strings.TrimSpace(helpText)
}

func (c *PingCommand) Synopsis() string {
	return "Verify connectivity to the configured database"
}

func (c *PingCommand) Run(args []string) int {
	cmdFlags := flag.NewFlagSet("ping", flag.ContinueOnError)
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

	if err := adapter.Ping(context.Background()); err != nil {
		ui.Error(err.Error())
		return 1
	}

	ui.Output("Connection OK")

	return 0
}
