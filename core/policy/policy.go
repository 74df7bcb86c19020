// Package policy evaluates a validation outcome against configurable
// thresholds to determine pass/fail outcomes for CI pipelines.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/compliance"
)

// Config defines the policy evaluation parameters. The zero value fails only
// on validation errors.
type Config struct {
	// MinCoverage is the minimum requirement coverage ratio (0..1).
	MinCoverage float64 `yaml:"min_coverage"`
	// FrameworkMinimums maps a framework name to its minimum critical
	// control coverage ratio.
	FrameworkMinimums map[string]float64 `yaml:"framework_minimums"`
	// MinFrameworks is the minimum number of frameworks the matrix must
	// reference.
	MinFrameworks int `yaml:"min_frameworks"`
	// FailOnWarnings makes any validation warning fail the run with exit
	// code 1. Warnings otherwise never change the exit code; this opt-in
	// is the only way they can.
	FailOnWarnings bool `yaml:"fail_on_warnings"`
}

// Input is the validation outcome a policy is evaluated against.
type Input struct {
	Errors     int
	Warnings   int
	Coverage   float64
	Compliance *compliance.Analysis
}

// Result holds the outcome of a policy evaluation.
type Result struct {
	Pass       bool     `json:"pass"`
	ExitCode   int      `json:"exit_code"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings,omitempty"`
	Summary    string   `json:"summary"`
}

// Evaluate applies policy rules to in and returns the result.
func Evaluate(cfg Config, in Input) *Result {
	r := &Result{Pass: true, Violations: []string{}}

	if in.Errors > 0 {
		r.fail("%d validation error(s)", in.Errors)
	}
	if cfg.FailOnWarnings && in.Warnings > 0 {
		r.fail("%d validation warning(s) with fail_on_warnings set", in.Warnings)
	}
	if cfg.MinCoverage > 0 && in.Coverage < cfg.MinCoverage {
		r.fail("requirement coverage %.2f%% below minimum %.2f%%", in.Coverage*100, cfg.MinCoverage*100)
	}

	if in.Compliance != nil {
		if cfg.MinFrameworks > 0 && in.Compliance.FrameworksRepresented < cfg.MinFrameworks {
			r.fail("%d compliance framework(s) referenced, minimum %d",
				in.Compliance.FrameworksRepresented, cfg.MinFrameworks)
		}
		names := make([]string, 0, len(cfg.FrameworkMinimums))
		for name := range cfg.FrameworkMinimums {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			floor := cfg.FrameworkMinimums[name]
			fw, ok := compliance.Lookup(name)
			if !ok {
				r.Warnings = append(r.Warnings, fmt.Sprintf("unknown framework in policy: %s", name))
				continue
			}
			for _, c := range in.Compliance.Frameworks {
				if c.Framework == fw.ID && c.Ratio < floor {
					r.fail("%s critical control coverage %.2f%% below minimum %.2f%%",
						fw.Name, c.Ratio*100, floor*100)
				}
			}
		}
	}

	verdict := "pass"
	if !r.Pass {
		verdict = "fail"
	}
	parts := []string{
		fmt.Sprintf("%d error(s)", in.Errors),
		fmt.Sprintf("%d warning(s)", in.Warnings),
		fmt.Sprintf("coverage %.2f%%", in.Coverage*100),
	}
	r.Summary = fmt.Sprintf("policy: %s (%s)", verdict, strings.Join(parts, ", "))
	return r
}

func (r *Result) fail(format string, args ...any) {
	r.Pass = false
	r.ExitCode = 1
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}
