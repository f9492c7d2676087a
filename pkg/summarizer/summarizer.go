// Package summarizer runs the two model calls made for one scan, the
// markdown summary and the graphviz graph, as a joined concurrent pair.
package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/germanamz/nmapsum/pkg/credentials"
	"github.com/germanamz/nmapsum/pkg/modeladapter"
	"github.com/germanamz/nmapsum/pkg/prompt"
	"github.com/germanamz/nmapsum/pkg/tools/mcpserver"
)

// ToolName is the name the summarizer is exposed under as a tool.
const ToolName = "summarize_nmap"

// Result holds the two artifacts produced for one scan.
type Result struct {
	Summary string // markdown
	Graph   string // raw model output, possibly fenced
}

// GraphSource returns the graph description with any code fence removed.
func (r Result) GraphSource() string {
	return prompt.StripCodeFence(r.Graph)
}

// Markdown returns a single document with the summary followed by the graph
// source in a dot code block.
func (r Result) Markdown() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(r.Summary, "\n"))
	sb.WriteString("\n\n## graph\n\n```dot\n")
	sb.WriteString(strings.TrimRight(r.GraphSource(), "\n"))
	sb.WriteString("\n```\n")
	return sb.String()
}

// Summarizer issues summary and graph requests through a Generator.
type Summarizer struct {
	gen modeladapter.Generator
	log *slog.Logger
}

// New returns a Summarizer. A nil log discards output.
func New(gen modeladapter.Generator, log *slog.Logger) *Summarizer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Summarizer{gen: gen, log: log}
}

// Run sends the summary and graph prompts for scan concurrently and waits
// for both to settle. Neither call cancels the other. On failure the
// returned Result still carries whichever half succeeded, and the error
// joins every failure.
func (s *Summarizer) Run(ctx context.Context, apiKey, scan string) (Result, error) {
	log := s.log.With("run_id", uuid.NewString())
	start := time.Now()
	log.Info("summarize started", "scan_bytes", len(scan))

	var (
		res                  Result
		summaryErr, graphErr error
		g                    errgroup.Group
	)

	g.Go(func() error {
		res.Summary, summaryErr = s.gen.Generate(ctx, apiKey, prompt.BuildSummary(scan))
		return nil
	})
	g.Go(func() error {
		res.Graph, graphErr = s.gen.Generate(ctx, apiKey, prompt.BuildGraph(scan))
		return nil
	})
	_ = g.Wait()

	var errs []error
	if summaryErr != nil {
		errs = append(errs, fmt.Errorf("summary: %w", summaryErr))
	}
	if graphErr != nil {
		errs = append(errs, fmt.Errorf("graph: %w", graphErr))
	}

	elapsed := time.Since(start)
	if err := errors.Join(errs...); err != nil {
		log.Error("summarize failed", "err", err, "duration_ms", elapsed.Milliseconds())
		return res, err
	}

	log.Info("summarize finished",
		"duration_ms", elapsed.Milliseconds(),
		"summary_bytes", len(res.Summary),
		"graph_bytes", len(res.Graph),
	)

	return res, nil
}

type toolInput struct {
	Scan   string `json:"scan"`
	APIKey string `json:"api_key"`
}

// Tool exposes Run as an MCP tool. When the caller passes no api_key, the
// key is read from keys.
func (s *Summarizer) Tool(keys credentials.Provider) mcpserver.Tool {
	return mcpserver.Tool{
		Name:        ToolName,
		Description: "Summarize Nmap scan output as markdown and describe the scanned hosts and open ports as a graphviz graph.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"scan":{"type":"string","description":"Raw Nmap output"},"api_key":{"type":"string","description":"Gemini API key; defaults to the stored key"}},"required":["scan"]}`),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in toolInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("invalid input: %w", err)
			}

			key := in.APIKey
			if key == "" {
				stored, err := keys.Get()
				if err != nil {
					return "", err
				}
				key = stored
			}

			res, err := s.Run(ctx, key, in.Scan)
			if err != nil {
				return "", err
			}
			return res.Markdown(), nil
		},
	}
}
