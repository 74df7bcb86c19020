package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/nox-hq/ctrlmatrix/assist"
	"github.com/nox-hq/ctrlmatrix/core"
)

// runExplain validates a matrix and generates LLM-powered explanations of
// its issues.
func runExplain(g *globals, args []string) int {
	fs := flag.NewFlagSet("explain", flag.ContinueOnError)

	settings := g.cfg.Explain
	defaultModel := settings.Model
	if defaultModel == "" {
		defaultModel = assist.DefaultModel
	}
	defaultBatch := settings.BatchSize
	if defaultBatch <= 0 {
		defaultBatch = 10
	}
	defaultOutput := settings.Output
	if defaultOutput == "" {
		defaultOutput = "explanations.json"
	}

	var (
		prr        string
		matrixPath string
		model      string
		baseURL    string
		batchSize  int
		output     string
	)

	fs.StringVar(&prr, "prr", "", "path to the PRR requirements document")
	fs.StringVar(&matrixPath, "matrix", "", "path to the control matrix CSV")
	fs.StringVar(&model, "model", defaultModel, "LLM model name")
	fs.StringVar(&baseURL, "base-url", settings.BaseURL, "custom OpenAI-compatible API base URL")
	fs.IntVar(&batchSize, "batch-size", defaultBatch, "issues per LLM request")
	fs.StringVar(&output, "output", defaultOutput, "output file path")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if prr == "" || matrixPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix explain --prr <file> --matrix <file> [flags]")
		return 2
	}

	keyEnv := settings.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" && baseURL == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required (or set --base-url for a local endpoint)\n", keyEnv)
		return 2
	}

	var timeout time.Duration
	if settings.Timeout != "" {
		d, err := time.ParseDuration(settings.Timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid explain.timeout %q: %v\n", settings.Timeout, err)
			return 2
		}
		timeout = d
	}

	opts, err := g.options()
	if err != nil {
		return reportError(err)
	}
	result, err := core.Validate(context.Background(), prr, matrixPath, opts)
	if err != nil {
		return reportError(err)
	}

	issueCount := result.Issues.Len()
	g.printf("[results] %d issues\n", issueCount)
	if issueCount == 0 {
		g.printf("[explain] no issues to explain\n")
		return 0
	}

	providerOpts := []assist.OpenAIOption{assist.WithModel(model)}
	if apiKey != "" {
		providerOpts = append(providerOpts, assist.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		providerOpts = append(providerOpts, assist.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		providerOpts = append(providerOpts, assist.WithTimeout(timeout))
	}
	provider := assist.NewRateLimitedProvider(assist.NewOpenAIProvider(providerOpts...), settings.RequestsPerMinute)

	explainer := assist.NewExplainer(provider,
		assist.WithBatchSize(batchSize),
		assist.WithLogger(g.logger),
	)

	g.printf("[explain] generating explanations...\n")
	rep, err := explainer.Explain(context.Background(), result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: explain failed: %v\n", err)
		return 2
	}

	if err := writeReport(output, rep.WriteFile); err != nil {
		return reportError(err)
	}
	g.printf("[explain] wrote %s (%d explanations)\n", output, len(rep.Explanations))

	if g.quiet {
		return 0
	}
	if isTerminal() {
		if rendered, err := renderMarkdown(rep.Markdown()); err == nil {
			fmt.Print(rendered)
			return 0
		}
	}
	if rep.Summary != "" {
		fmt.Printf("[summary] %s\n", rep.Summary)
	}
	return 0
}

// renderMarkdown styles markdown for the terminal.
func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
