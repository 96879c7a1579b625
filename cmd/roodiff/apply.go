// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wwicak/roo-code/pkg/patcher"
	"github.com/wwicak/roo-code/pkg/types"
)

// newApplyCmd creates the "apply" command.
func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a diff to a file",
		Long:  "Apply reads a diff (search/replace block or unified diff), selects the matching strategy from the target file's metadata, and rewrites the file atomically.",
		RunE:  runApply,
	}

	cmd.Flags().StringP("file", "f", "", "Target file (required)")
	cmd.Flags().StringP("diff", "d", "-", "Diff file, or '-' for stdin")
	cmd.Flags().String("strategy", "", "Override strategy selection (search_replace, unified, parallel, ast, smart_hybrid)")
	cmd.Flags().Int("start-line", 0, "1-based start of the target region hint")
	cmd.Flags().Int("end-line", 0, "1-based end of the target region hint")
	cmd.Flags().Bool("metrics", false, "Print execution metrics as JSON on success")
	cmd.Flags().Bool("dry-run", false, "Print the patched content instead of writing the file")
	cmd.MarkFlagRequired("file")

	return cmd
}

// runApply executes one apply call against the filesystem.
func runApply(cmd *cobra.Command, args []string) error {
	log := newLogger()

	path, _ := cmd.Flags().GetString("file")
	diffPath, _ := cmd.Flags().GetString("diff")
	override, _ := cmd.Flags().GetString("strategy")
	startLine, _ := cmd.Flags().GetInt("start-line")
	endLine, _ := cmd.Flags().GetInt("end-line")
	metrics, _ := cmd.Flags().GetBool("metrics")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	original, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	diff, err := readDiff(diffPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	engine := patcher.New(patcher.Config{
		FuzzyThreshold: viper.GetFloat64("fuzzy-threshold"),
		NodeThreshold:  viper.GetFloat64("node-threshold"),
		BufferLines:    viper.GetInt("buffer-lines"),
		Logger:         log,
	})

	opts := &types.ApplyOptions{
		StartLine:      startLine,
		EndLine:        endLine,
		CollectMetrics: metrics,
		FileStats: &types.FileStats{
			Size:         info.Size(),
			Path:         path,
			LastModified: info.ModTime(),
		},
	}

	model := viper.GetString("model")
	var result types.DiffResult
	if override != "" {
		st, ok := engine.Strategy(override)
		if !ok {
			return fmt.Errorf("unknown strategy %q", override)
		}
		result = st.ApplyDiff(string(original), diff, opts)
	} else {
		result = engine.Apply(model, string(original), diff, opts)
	}

	if !result.Success {
		log.Error().Str("kind", string(result.Kind)).Msg(result.Error)
		if result.Details != "" {
			fmt.Fprintln(os.Stderr, result.Details)
		}
		for _, c := range result.Conflicts {
			fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", c.Path, c.Message, c.Severity)
		}
		return fmt.Errorf("apply failed: %s", result.Error)
	}

	if dryRun {
		fmt.Print(result.Content)
	} else if err := atomicWrite(path, []byte(result.Content)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	log.Info().Int("applied_lines", result.AppliedLines).Msg("diff applied")
	if metrics && result.Metrics != nil {
		out, _ := json.Marshal(result.Metrics)
		fmt.Println(string(out))
	}
	return nil
}

// readDiff loads the diff text from a file or stdin.
func readDiff(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading diff from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading diff %s: %w", path, err)
	}
	return string(data), nil
}

// newDescribeCmd creates the "describe" command, which prints the tool
// description of every strategy (or one, when named).
func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [strategy]",
		Short: "Print strategy tool descriptions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := patcher.New(patcher.Config{Logger: newLogger()})
			cwd, _ := os.Getwd()

			if len(args) == 1 {
				st, ok := engine.Strategy(args[0])
				if !ok {
					return fmt.Errorf("unknown strategy %q", args[0])
				}
				fmt.Println(st.ToolDescription(cwd))
				return nil
			}
			for _, st := range engine.Strategies() {
				fmt.Println(st.ToolDescription(cwd))
				fmt.Println()
			}
			return nil
		},
	}
}

// atomicWrite replaces path's content via a sibling temp file and a rename,
// so a crash mid-write never leaves a half-patched file. The target's
// permissions carry over; a missing target defaults to 0644.
func atomicWrite(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".roodiff-*.tmp")
	if err != nil {
		return fmt.Errorf("staging patched content: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // No-op once the rename has happened.

	_, werr := f.Write(data)
	cerr := f.Close()
	switch {
	case werr != nil:
		return fmt.Errorf("staging patched content: %w", werr)
	case cerr != nil:
		return fmt.Errorf("staging patched content: %w", cerr)
	}

	if err := os.Chmod(tmp, perm); err != nil {
		return fmt.Errorf("carrying over permissions: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
