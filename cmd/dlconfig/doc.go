// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for dlconfig.
//
// The command tree is built by NewRootCommand around an App, which carries
// the configuration provider and the output writers so tests can run
// commands without touching the real user configuration.
package cmd
