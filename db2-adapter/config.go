package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	db2 "github.com/kva3umoda/db2-adapter"
	"github.com/kva3umoda/db2-adapter/model"
)

var ConfigFile string
var ConfigEnvironment string
var Trace bool

func ConfigFlags(f *flag.FlagSet) {
	f.StringVar(&ConfigFile, "config", "dbconfig.yml", "Configuration file to use.")
	f.StringVar(&ConfigEnvironment, "env", "development", "Environment to use.")
	f.BoolVar(&Trace, "trace", false, "Log statements as they run.")
}

// Environment is one named entry in the configuration file: connection
// settings inline, plus the driver name and the model definitions file.
type Environment struct {
	db2.Settings `yaml:",inline"`

	Driver string `yaml:"driver"`
	Models string `yaml:"models"`
}

func ReadConfig() (map[string]*Environment, error) {
	file, err := os.ReadFile(ConfigFile)
	if err != nil {
		return nil, err
	}

	config := make(map[string]*Environment)
	if err := yaml.Unmarshal(file, config); err != nil {
		return nil, err
	}

	return config, nil
}

func GetEnvironment() (*Environment, error) {
	config, err := ReadConfig()
	if err != nil {
		return nil, err
	}

	env := config[ConfigEnvironment]
	if env == nil {
		return nil, errors.New("No environment: " + ConfigEnvironment)
	}

	env.DSN = os.ExpandEnv(env.DSN)
	env.Password = os.ExpandEnv(env.Password)

	return env, nil
}

// GetAdapter connects the configured environment and loads its model
// registry. The driver must be compiled into the binary.
func GetAdapter(env *Environment) (*db2.Adapter, error) {
	driver := env.Driver
	if driver == "" {
		driver = db2.DefaultDriverName
	}

	if !driverRegistered(driver) {
		return nil, fmt.Errorf("driver %q is not compiled into this binary; rebuild with -tags ibmdb", driver)
	}

	registry, err := loadRegistry(env)
	if err != nil {
		return nil, err
	}

	var logger db2.Logger
	if Trace {
		logger = db2.DefaultLogger()
	}

	return db2.Open(driver, &env.Settings, registry, logger)
}

func loadRegistry(env *Environment) (model.Registry, error) {
	if env.Models == "" {
		return model.NewStaticRegistry(), nil
	}

	return model.LoadRegistry(env.Models)
}

func driverRegistered(name string) bool {
	for _, d := range sql.Drivers() {
		if d == name {
			return true
		}
	}

	return false
}
