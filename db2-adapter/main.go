package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

const version = "1.0.0"

var ui cli.Ui

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ui = &cli.BasicUi{Writer: os.Stdout, ErrorWriter: os.Stderr}

	c := cli.NewCLI("db2-adapter", version)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"ping": func() (cli.Command, error) {
			return &PingCommand{}, nil
		},
		"status": func() (cli.Command, error) {
			return &StatusCommand{}, nil
		},
		"automigrate": func() (cli.Command, error) {
			return &AutomigrateCommand{}, nil
		},
		"drop": func() (cli.Command, error) {
			return &DropCommand{}, nil
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
		return 1
	}

	return exitCode
}
