// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Command roodiff is a test CLI for the patch-application engine: it
// applies a diff in any supported dialect to a file on disk, or prints the
// per-strategy tool descriptions used for prompt construction.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "roodiff",
		Short: "Fuzzy patch-application engine",
		Long:  "roodiff locates the target region of a diff, verifies it is safe to modify, applies the edit, and reports the result or a precise failure.",
	}

	// Global flags.
	rootCmd.PersistentFlags().Float64("fuzzy-threshold", 1.0, "Minimum similarity score to accept a match (0-1)")
	rootCmd.PersistentFlags().Float64("node-threshold", 0.6, "Minimum score to accept a structural update (0-1)")
	rootCmd.PersistentFlags().Int("buffer-lines", 40, "Extra lines searched around a line-range hint")
	rootCmd.PersistentFlags().String("model", "", "Model identifier forwarded to strategy selection")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	// Bind flags to viper.
	viper.BindPFlag("fuzzy-threshold", rootCmd.PersistentFlags().Lookup("fuzzy-threshold"))
	viper.BindPFlag("node-threshold", rootCmd.PersistentFlags().Lookup("node-threshold"))
	viper.BindPFlag("buffer-lines", rootCmd.PersistentFlags().Lookup("buffer-lines"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Env vars: ROODIFF_FUZZY_THRESHOLD, ROODIFF_MODEL, etc.
	viper.SetEnvPrefix("ROODIFF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".roodiff")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the CLI logger; debug level only with --verbose.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print roodiff version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("roodiff %s\n", version)
		},
	}
}
