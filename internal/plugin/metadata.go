// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package plugin

import (
	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// APIVersion is the host plugin API version the plugin is built against.
const APIVersion = 26

// DefaultVersion is the version reported when the build does not set one.
const DefaultVersion = "1.4.0"

// Metadata is what the host shows in its plugin list.
type Metadata struct {
	Name        string
	Version     *semver.Version
	Author      string
	Description string
	APIVersion  int
}

// DefaultMetadata returns the plugin's built-in metadata.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:        "TsLua Plugin",
		Version:     semver.MustParse(DefaultVersion),
		Author:      "TsLua Contributors",
		Description: "Lua scripting for the voice client: load scripts, call script functions and react to client events.",
		APIVersion:  APIVersion,
	}
}

// ParseVersion parses a build version such as "v1.5.0" or "1.5.0-rc.1".
func ParseVersion(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, oops.In("plugin").With("version", version).Wrapf(err, "invalid plugin version")
	}
	return v, nil
}

// Info returns the plugin metadata.
func (p *Plugin) Info() Metadata {
	return p.about
}

// Supports reports whether the plugin can run on a host offering the given
// API version. The host API is not backward compatible, so only an exact
// match is accepted.
func (m Metadata) Supports(hostAPIVersion int) bool {
	return hostAPIVersion == m.APIVersion
}
