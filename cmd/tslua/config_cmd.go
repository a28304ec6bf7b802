// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tslua/tslua/internal/config"
	"github.com/tslua/tslua/internal/engine"
	"github.com/tslua/tslua/internal/xdg"
)

const starterScript = `-- Loaded when the plugin starts and by "/tslua lua reload".
local ts3 = require("ts3api")

function on_connect(conn)
  ts3.log("connected to server " .. conn, 0)
end

function on_command(conn, name, rest)
  if name == "hello" then
    ts3.print_message(conn, "Hello from Lua!")
  end
end
`

// NewConfigCmd creates the config subcommand.
func NewConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tslua.yaml",
	}

	cmd.AddCommand(newConfigSchemaCmd())
	cmd.AddCommand(newConfigInitCmd(opts))
	cmd.AddCommand(newConfigValidateCmd(opts))
	cmd.AddCommand(newConfigShowCmd(opts))

	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for tslua.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := config.GenerateSchema()
			if err != nil {
				return oops.Wrapf(err, "generating schema")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return err
		},
	}
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default tslua.yaml and a starter init script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}

			cfgPath := config.Path(paths.configDir)
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return oops.Code("CONFIG_EXISTS").With("path", cfgPath).
					Errorf("%s already exists (use --force to overwrite)", cfgPath)
			}

			cfg := config.Default()
			if err := config.Save(cfgPath, &cfg); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", cfgPath)

			scripts := filepath.Join(paths.pluginDir, "scripts")
			if err := xdg.EnsureDir(scripts); err != nil {
				return oops.Wrap(err)
			}
			initPath := filepath.Join(scripts, engine.DefaultInitScript)
			if _, err := os.Stat(initPath); errors.Is(err, fs.ErrNotExist) {
				if err := os.WriteFile(initPath, []byte(starterScript), 0o600); err != nil {
					return oops.With("path", initPath).Wrapf(err, "writing init script")
				}
				cmd.Printf("Wrote %s\n", initPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing tslua.yaml")

	return cmd
}

func newConfigValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate tslua.yaml against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFile(opts, args)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Clean(path))
			if err != nil {
				return oops.With("path", path).Wrapf(err, "reading config file")
			}
			if err := config.ValidateSchema(data); err != nil {
				cmd.Printf("%s: %s\n", path, config.FormatSchemaError(err))
				return oops.Code(config.CodeInvalid).With("path", path).Wrap(err)
			}
			if _, err := config.Load(path, nil); err != nil {
				cmd.Printf("%s: %s\n", path, err.Error())
				return err
			}
			cmd.Printf("%s: valid\n", path)
			return nil
		},
	}
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
	}
	config.RegisterFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		path, err := configFile(opts, nil)
		if err != nil {
			return err
		}
		cfg, err := config.Load(path, cmd.Flags())
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return oops.Wrapf(err, "encoding config")
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	return cmd
}

type resolvedPaths struct {
	configDir string
	pluginDir string
}

func resolvePaths(opts *rootOptions) (resolvedPaths, error) {
	p := resolvedPaths{configDir: opts.configDir, pluginDir: opts.pluginDir}
	if p.configDir == "" {
		dir, err := xdg.ConfigDir()
		if err != nil {
			return p, oops.Wrap(err)
		}
		p.configDir = dir
	}
	if p.pluginDir == "" {
		dir, err := xdg.DataDir()
		if err != nil {
			return p, oops.Wrap(err)
		}
		p.pluginDir = dir
	}
	return p, nil
}

// configFile returns the explicit file argument or tslua.yaml in the
// config directory.
func configFile(opts *rootOptions, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	paths, err := resolvePaths(opts)
	if err != nil {
		return "", err
	}
	return config.Path(paths.configDir), nil
}
