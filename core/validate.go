// Package core provides the shared validation pipeline for ctrlmatrix.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/compliance"
	"github.com/nox-hq/ctrlmatrix/core/evidence"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
	"github.com/nox-hq/ctrlmatrix/core/policy"
	"github.com/nox-hq/ctrlmatrix/core/requirements"
	"github.com/nox-hq/ctrlmatrix/core/schema"
	"github.com/nox-hq/ctrlmatrix/core/xref"
)

// Coverage statistic keys of Result.CoverageStats.
const (
	StatTotalRequirements  = "total_prr_requirements"
	StatMapped             = "mapped_requirements"
	StatUnmapped           = "unmapped_requirements"
	StatInvalidReferences  = "invalid_references"
	StatDuplicates         = "duplicate_requirements"
	StatTotalEntries       = "total_control_entries"
	StatSkippedRows        = "skipped_rows"
	StatCoverageRatio      = "coverage_ratio"
	StatCoveragePercentage = "coverage_percentage"
)

const defaultParallelism = 4

// Options holds optional parameters for Validate. The zero value applies
// the built-in rules to every built-in framework without a policy.
type Options struct {
	// Logger receives progress messages. Defaults to slog.Default().
	Logger *slog.Logger

	// KnownServices and KnownFrameworks extend the schema validator's
	// built-in sets.
	KnownServices   []string
	KnownFrameworks []string

	// SkipEvidenceChecks disables evidence artifact format checks.
	SkipEvidenceChecks bool

	// Frameworks restricts compliance scoring. Empty means all built-ins.
	Frameworks []compliance.Framework

	// Policy, when set, is evaluated after validation.
	Policy *policy.Config

	// Parallelism bounds concurrent runs in ValidateAll. Defaults to 4.
	Parallelism int
}

// OptionsFromConfig builds Options from project configuration. Unknown
// framework names in compliance.frameworks are an error.
func OptionsFromConfig(cfg *Config) (Options, error) {
	opts := Options{
		KnownServices:      cfg.Validate.KnownServices,
		KnownFrameworks:    cfg.Validate.KnownFrameworks,
		SkipEvidenceChecks: cfg.Validate.SkipEvidenceChecks,
	}
	for _, name := range cfg.Compliance.Frameworks {
		fw, ok := compliance.Lookup(name)
		if !ok {
			return Options{}, fmt.Errorf("unknown compliance framework %q", name)
		}
		opts.Frameworks = append(opts.Frameworks, fw)
	}
	p := cfg.Policy
	opts.Policy = &p
	return opts, nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Result holds the complete output of a validation run.
type Result struct {
	Valid         bool               `json:"valid"`
	Errors        []string           `json:"errors"`
	Warnings      []string           `json:"warnings"`
	CoverageStats map[string]float64 `json:"coverage_stats"`

	// PRRPath is the requirements document the matrix was checked against.
	PRRPath      string               `json:"prr_file,omitempty"`
	Issues       *issues.Set          `json:"-"`
	Requirements requirements.Set     `json:"-"`
	Matrix       *matrix.Matrix       `json:"-"`
	XRef         *xref.Result         `json:"-"`
	Compliance   *compliance.Analysis `json:"compliance"`
	Policy       *policy.Result       `json:"policy,omitempty"`
}

// ExitCode returns 0 when the run passes and 1 when validation or the
// configured policy fails.
func (r *Result) ExitCode() int {
	if r.Policy != nil {
		return r.Policy.ExitCode
	}
	if !r.Valid {
		return 1
	}
	return 0
}

// Validate runs the full pipeline: it extracts requirement IDs from the
// document at prrPath, loads the control matrix at matrixPath, and applies
// the schema, cross-reference, evidence and compliance checks. Only I/O
// failures are returned as errors.
func Validate(ctx context.Context, prrPath, matrixPath string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reqs, err := extract(prrPath, opts.logger())
	if err != nil {
		return nil, err
	}
	return validateMatrix(ctx, reqs, prrPath, matrixPath, opts)
}

// ValidateAll validates each matrix against the same requirements document
// concurrently. Results are returned in the order of matrixPaths. The first
// I/O failure cancels the remaining runs.
func ValidateAll(ctx context.Context, prrPath string, matrixPaths []string, opts Options) ([]*Result, error) {
	reqs, err := extract(prrPath, opts.logger())
	if err != nil {
		return nil, err
	}

	limit := opts.Parallelism
	if limit <= 0 {
		limit = defaultParallelism
	}

	results := make([]*Result, len(matrixPaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range matrixPaths {
		g.Go(func() error {
			r, err := validateMatrix(gctx, reqs, prrPath, path, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func extract(prrPath string, log *slog.Logger) (requirements.Set, error) {
	reqs, err := requirements.ExtractFile(prrPath)
	if err != nil {
		return nil, err
	}
	log.Info("extracted requirements", "path", prrPath, "count", reqs.Len())
	return reqs, nil
}

func validateMatrix(ctx context.Context, reqs requirements.Set, prrPath, matrixPath string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := matrix.Load(matrixPath)
	if err != nil {
		return nil, err
	}
	log := opts.logger()
	log.Info("loaded control matrix", "path", matrixPath, "entries", len(m.Entries))
	for _, s := range m.Skipped {
		log.Warn("skipped control matrix row", "path", matrixPath, "row", s.Row, "reason", s.Reason)
	}
	r := Evaluate(reqs, m, opts)
	r.PRRPath = prrPath
	return r, nil
}

// Evaluate validates an already loaded matrix against reqs.
func Evaluate(reqs requirements.Set, m *matrix.Matrix, opts Options) *Result {
	set := loaderIssues(m)

	validator := schema.New(
		schema.WithServices(opts.KnownServices...),
		schema.WithFrameworks(opts.KnownFrameworks...),
	)
	set.Merge(validator.Check(m.Entries))

	xr := xref.Resolve(reqs, m.Entries)
	set.Merge(xr.Issues())

	if !opts.SkipEvidenceChecks {
		set.Merge(evidence.Check(m.Entries))
	}

	r := &Result{
		Errors:        set.Errors(),
		Warnings:      set.Warnings(),
		CoverageStats: coverageStats(reqs, m, xr),
		Issues:        set,
		Requirements:  reqs,
		Matrix:        m,
		XRef:          xr,
		Compliance:    compliance.Analyze(m.Entries, opts.Frameworks...),
	}
	r.Valid = len(r.Errors) == 0

	if opts.Policy != nil {
		r.Policy = policy.Evaluate(*opts.Policy, policy.Input{
			Errors:     len(r.Errors),
			Warnings:   len(r.Warnings),
			Coverage:   xr.Coverage,
			Compliance: r.Compliance,
		})
	}
	return r
}

func loaderIssues(m *matrix.Matrix) *issues.Set {
	set := issues.NewSet()
	for _, c := range m.MissingColumns {
		set.Add(issues.Issue{
			Code:     catalog.MissingColumn,
			Level:    issues.LevelWarning,
			Message:  matrix.MissingColumnMessage(c),
			Metadata: map[string]string{"column": c},
		})
	}
	for _, s := range m.Skipped {
		set.Add(issues.Issue{
			Code:     catalog.UndecodableRow,
			Level:    issues.LevelWarning,
			Row:      s.Row,
			Message:  s.Message(),
			Metadata: map[string]string{"reason": s.Reason},
		})
	}
	return set
}

func coverageStats(reqs requirements.Set, m *matrix.Matrix, xr *xref.Result) map[string]float64 {
	return map[string]float64{
		StatTotalRequirements:  float64(reqs.Len()),
		StatMapped:             float64(xr.Mapped),
		StatUnmapped:           float64(len(xr.Unmapped)),
		StatInvalidReferences:  float64(len(xr.Invalid)),
		StatDuplicates:         float64(len(xr.Duplicates)),
		StatTotalEntries:       float64(len(m.Entries)),
		StatSkippedRows:        float64(len(m.Skipped)),
		StatCoverageRatio:      xr.Coverage,
		StatCoveragePercentage: math.Round(xr.Coverage*10000) / 100,
	}
}
