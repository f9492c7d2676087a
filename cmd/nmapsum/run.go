package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

type runOptions struct {
	scanPath   string
	apiKey     string
	summaryOut string
	dotOut     string
}

func runOnce(ctx context.Context, c commonFlags, opts runOptions) error {
	d, err := buildDeps(c, logStderr)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	scan, err := readScan(opts.scanPath, os.Stdin)
	if err != nil {
		return err
	}

	return summarizeOnce(ctx, d, scan, opts, os.Stdout)
}

// summarizeOnce runs a single cycle and writes the summary and the graph
// source to their files, or to stdout for the ones without a file.
func summarizeOnce(ctx context.Context, d *deps, scan string, opts runOptions, stdout io.Writer) error {
	apiKey := opts.apiKey
	if apiKey == "" {
		stored, err := d.creds.Get()
		if err != nil {
			return err
		}
		apiKey = stored
	}

	res, err := d.sum.Run(ctx, apiKey, scan)
	if err != nil {
		return err
	}

	total := d.client.UsageTracker().Total()
	d.log.Info("run finished", "input_tokens", total.InputTokens, "output_tokens", total.OutputTokens)

	dotOut := opts.dotOut
	if dotOut == "" {
		dotOut = d.cfg.DotOut
	}

	if opts.summaryOut == "" && dotOut == "" {
		_, err := io.WriteString(stdout, res.Markdown())
		return err
	}

	if err := emit(stdout, opts.summaryOut, res.Summary); err != nil {
		return err
	}
	return emit(stdout, dotOut, res.GraphSource())
}

// emit writes text to path, or to stdout when path is empty.
func emit(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil { //nolint:gosec // output files are not sensitive
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

