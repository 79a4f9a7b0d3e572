/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package commands implements the vrx command line interface.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dirpx.dev/vrx"
	"dirpx.dev/vrx/config"
	"dirpx.dev/vrx/logging"
	"dirpx.dev/vrx/source/manifest"
)

// Version is the version reported by --version.
var Version = "dev"

// CLI represents the command line interface for vrx.
type CLI struct {
	rootCmd *cobra.Command
	v       *viper.Viper
	cfgFile string

	file config.File
	log  logr.Logger
	src  *manifest.Source
	svc  *vrx.Service
}

// New creates a new CLI instance.
func New() *CLI {
	c := &CLI{v: viper.New(), log: logr.Discard()}
	config.SetDefaults(c.v)

	rootCmd := &cobra.Command{
		Use:           "vrx",
		Short:         "Resolve view descriptors from view manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.cfgFile, "config", "c", "", "config file (YAML)")
	flags.StringP("dir", "d", "views", "directory holding *.view.yaml manifests")
	flags.Int("log-level", 0, "log verbosity (0 = info, 5 = trace)")
	_ = c.v.BindPFlag(config.KeyViewsDir, flags.Lookup("dir"))
	_ = c.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	rootCmd.InitDefaultVersionFlag()
	rootCmd.InitDefaultHelpFlag()

	c.rootCmd = rootCmd
	rootCmd.AddCommand(
		c.newResolveCmd(),
		c.newListCmd(),
		c.newTagsCmd(),
		c.newPlanCmd(),
		c.newInfoCmd(),
		c.newWatchCmd(),
	)
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	defer func() {
		if c.svc != nil {
			_ = c.svc.Close()
		}
	}()
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// setup loads the configuration and builds the service from the manifest
// directory.
func (c *CLI) setup() error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", c.cfgFile, err)
		}
	}
	f, err := config.Load(c.v)
	if err != nil {
		return err
	}
	log, err := logging.NewLogger(f.Log.Level, f.Log.Development)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	c.file = f
	c.log = log
	c.src = manifest.New(f.Views.Dir)
	c.svc = vrx.New(
		vrx.WithConfig(f.Config()),
		vrx.WithSource(c.src),
		vrx.WithLogger(log.WithName("vrx")),
	)
	if err := c.svc.Rebuild(false); err != nil {
		return fmt.Errorf("loading manifests from %s: %w", f.Views.Dir, err)
	}
	return nil
}
