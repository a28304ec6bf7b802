// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/tslua/tslua/internal/plugin"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configDir string
	pluginDir string
}

func (o *rootOptions) paths() plugin.Paths {
	return plugin.Paths{Config: o.configDir, Plugin: o.pluginDir}
}

// NewRootCmd creates the root command for the tslua CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tslua",
		Short: "tslua - Lua scripting for the voice client",
		Long: `tslua embeds a Lua interpreter in the voice client. Scripts react to
client events and add chat commands through the ts3api module.

The run command hosts the plugin on the console so scripts can be
exercised without a client.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "directory holding tslua.yaml (default: XDG_CONFIG_HOME/tslua)")
	cmd.PersistentFlags().StringVar(&opts.pluginDir, "plugin-dir", "", "plugin root; scripts live in its scripts directory (default: XDG_DATA_HOME/tslua)")

	cmd.AddCommand(NewRunCmd(opts))
	cmd.AddCommand(NewCheckCmd(opts))
	cmd.AddCommand(NewConfigCmd(opts))

	return cmd
}
