package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

const defaultBatchSize = 10

// Explainer orchestrates LLM-based explanation of validation issues. It
// batches issues, sends them to a Provider, and assembles an
// ExplanationReport.
type Explainer struct {
	provider  Provider
	batchSize int
	logger    *slog.Logger
}

// Option configures an Explainer.
type Option func(*Explainer)

// WithBatchSize sets how many issues are sent per LLM call (default 10).
func WithBatchSize(n int) Option {
	return func(e *Explainer) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(e *Explainer) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExplainer creates an Explainer with the given provider and options.
func NewExplainer(provider Provider, opts ...Option) *Explainer {
	e := &Explainer{
		provider:  provider,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Explain explains every issue of the validation result and adds an
// executive summary.
//
// A provider or parsing failure does not fail the call: the explanations
// gathered so far are returned and the error is recorded in the summary.
func (e *Explainer) Explain(ctx context.Context, result *core.Result) (*ExplanationReport, error) {
	report := &ExplanationReport{
		SchemaVersion: "1.0.0",
		Explanations:  []IssueExplanation{},
	}
	if result.Matrix != nil {
		report.MatrixFile = result.Matrix.Path
	}

	var all []issues.Issue
	if result.Issues != nil {
		all = result.Issues.Issues()
	}
	if len(all) == 0 {
		report.Summary = "No issues to explain."
		return report, nil
	}

	rows := map[int]matrix.Entry{}
	if result.Matrix != nil {
		for _, entry := range result.Matrix.Entries {
			rows[entry.Row] = entry
		}
	}
	cat := catalog.Catalog()

	base := []Message{
		{Role: RoleSystem, Content: systemPrompt()},
		{Role: RoleUser, Content: formatContext(result)},
	}

	var providerErr error
	for i := 0; i < len(all); i += e.batchSize {
		end := min(i+e.batchSize, len(all))
		batch := all[i:end]

		messages := make([]Message, len(base)+1)
		copy(messages, base)
		messages[len(base)] = Message{
			Role:    RoleUser,
			Content: "Explain these issues:\n\n" + formatIssues(batch, rows, cat),
		}

		e.logger.Debug("explaining issue batch", "from", i, "to", end)
		resp, err := e.provider.Complete(ctx, messages)
		if err != nil {
			providerErr = err
			break
		}
		report.Usage.add(resp)

		explanations, err := parseExplanations(resp.Content)
		if err != nil {
			providerErr = fmt.Errorf("parsing LLM response: %w", err)
			break
		}
		report.Explanations = append(report.Explanations, explanations...)
	}

	switch {
	case providerErr != nil:
		e.logger.Warn("explanation incomplete", "explained", len(report.Explanations), "total", len(all), "error", providerErr)
		report.Summary = fmt.Sprintf("Partial results: %d of %d issues explained. Error: %v",
			len(report.Explanations), len(all), providerErr)
	case len(report.Explanations) > 0:
		summary, err := e.generateSummary(ctx, report)
		if err != nil {
			report.Summary = fmt.Sprintf("Generated explanations for %d issues. Summary generation failed: %v",
				len(report.Explanations), err)
		} else {
			report.Summary = summary
		}
	}

	return report, nil
}

// generateSummary asks the provider for an executive summary of all
// explained issues.
func (e *Explainer) generateSummary(ctx context.Context, report *ExplanationReport) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: "You are a compliance reviewer summarising a control matrix review."},
		{Role: RoleUser, Content: summaryPrompt(report.Explanations)},
	}

	resp, err := e.provider.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	report.Usage.add(resp)
	return strings.TrimSpace(resp.Content), nil
}

// parseExplanations decodes the LLM's JSON array, tolerating a surrounding
// markdown code fence.
func parseExplanations(raw string) ([]IssueExplanation, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
	}
	var explanations []IssueExplanation
	if err := json.Unmarshal([]byte(raw), &explanations); err != nil {
		return nil, fmt.Errorf("invalid JSON from LLM: %w", err)
	}
	return explanations, nil
}
