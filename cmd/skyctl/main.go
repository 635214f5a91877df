// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/skyctl/main.go
// Summary: Command line companion for skylight: inspects stored
//          sessions, lists components and serves the MCP tools.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "skyctl",
	Short: "Inspect and manage skylight sessions",
	Long:  "skyctl works on the same session database as the skylight shell: list and dump saved sessions, browse components, or expose the desktop as MCP tools.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml or json")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log internal activity to stderr")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Registry and store internals log freely; keep them quiet
		// unless asked.
		if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); !verbose {
			log.SetOutput(io.Discard)
		}
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the skyctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("skyctl", version)
		},
	})
}

// printOut serializes v to stdout in the selected output format.
func printOut(cmd *cobra.Command, v any) error {
	format, _ := cmd.Root().PersistentFlags().GetString("format")
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
	}
}
