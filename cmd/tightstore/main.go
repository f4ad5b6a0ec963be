// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/attic-labs/kingpin"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type commandEnv struct {
	cfg *YAMLConfig
	out io.Writer
}

type kingpinHandler func(env *commandEnv) error
type kingpinCommand func(*kingpin.Application) (*kingpin.CmdClause, kingpinHandler)

var kingpinCommands = []kingpinCommand{
	showCommand,
	sortCommand,
	aggregateCommand,
	verifyCommand,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	app := kingpin.New("tightstore", "Loads table fixtures into an in-memory group and inspects them.")
	app.HelpFlag.Short('h')

	// global flags
	cfgPath := app.Flag("config", "yaml config file").Short('c').String()
	verbose := app.Flag("verbose", "log at debug level").Short('v').Bool()

	handlers := map[string]kingpinHandler{}
	for _, cmdFunction := range kingpinCommands {
		command, handler := cmdFunction(app)
		handlers[command.FullCommand()] = handler
	}

	input, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", app.Name, err)
		return 2
	}

	cfg := &YAMLConfig{}
	if *cfgPath != "" {
		if cfg, err = YamlConfigFromFile(*cfgPath); err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
	}
	if *verbose {
		level := "debug"
		cfg.LogLevelStr = &level
	}
	if err := cfg.Apply(); err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	logrus.SetOutput(errOut)

	if err := handlers[input](&commandEnv{cfg: cfg, out: out}); err != nil {
		fmt.Fprintln(errOut, color.RedString("error: %v", err))
		return 1
	}
	return 0
}
