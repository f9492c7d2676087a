package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			runCmd := flag.NewFlagSet("run", flag.ExitOnError)
			runCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: nmapsum run [flags]\n\nSummarize one scan without the TUI and print the summary and graph source.\n\nFlags:\n")
				runCmd.PrintDefaults()
			}
			var common commonFlags
			common.register(runCmd)
			scan := runCmd.String("scan", "-", "nmap output file (- for stdin)")
			apiKey := runCmd.String("key", "", "Gemini API key (default: stored key or $GEMINI_KEY)")
			summaryOut := runCmd.String("summary-out", "", "write the markdown summary to this file instead of stdout")
			dotOut := runCmd.String("dot-out", "", "write the graph source to this file instead of stdout")
			_ = runCmd.Parse(os.Args[2:])

			exitOnError(runOnce(ctx, common, runOptions{
				scanPath:   *scan,
				apiKey:     *apiKey,
				summaryOut: *summaryOut,
				dotOut:     *dotOut,
			}))
			return

		case "key":
			keyCmd := flag.NewFlagSet("key", flag.ExitOnError)
			keyCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: nmapsum key [flags]\n\nStore the Gemini API key used by every other command.\n\nFlags:\n")
				keyCmd.PrintDefaults()
			}
			var common commonFlags
			common.register(keyCmd)
			_ = keyCmd.Parse(os.Args[2:])

			exitOnError(runKey(common))
			return

		case "serve":
			serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
			serveCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: nmapsum serve [flags]\n\nServe the summarizer over HTTP.\n\nFlags:\n")
				serveCmd.PrintDefaults()
			}
			var common commonFlags
			common.register(serveCmd)
			addr := serveCmd.String("addr", "", "listen address (default: addr from config, :8080)")
			_ = serveCmd.Parse(os.Args[2:])

			exitOnError(runServe(ctx, common, *addr))
			return

		case "mcp":
			mcpCmd := flag.NewFlagSet("mcp", flag.ExitOnError)
			mcpCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: nmapsum mcp [flags]\n\nExpose the summarize_nmap tool over MCP on stdio.\n\nFlags:\n")
				mcpCmd.PrintDefaults()
			}
			var common commonFlags
			common.register(mcpCmd)
			_ = mcpCmd.Parse(os.Args[2:])

			exitOnError(runMCP(ctx, common))
			return
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nmapsum [flags]\n       nmapsum <command> [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n"+
			"  run     Summarize one scan and print the results\n"+
			"  key     Store the Gemini API key\n"+
			"  serve   Serve the summarizer over HTTP\n"+
			"  mcp     Serve the summarize_nmap tool over MCP stdio\n")
	}

	var common commonFlags
	common.register(flag.CommandLine)
	scan := flag.String("scan", "", "prefill the scan field from this file")
	dotOut := flag.String("dot-out", "", "write the graph source to this file after every result")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	exitOnError(runTUI(ctx, common, *scan, *dotOut))
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
