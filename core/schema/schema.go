// Package schema checks control matrix entries against the required field
// and format rules. Problems are reported as issues; a malformed matrix is
// never a Go error.
package schema

import (
	"fmt"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
	"github.com/nox-hq/ctrlmatrix/core/requirements"
)

var defaultServices = []string{
	"IAM", "Lambda", "API Gateway", "CloudWatch", "X-Ray", "KMS",
	"Secrets Manager", "Parameter Store", "S3", "DynamoDB", "SQS", "SNS",
	"EventBridge", "CodeDeploy", "CodeSigner", "Config", "CloudTrail",
	"Security Hub", "GuardDuty", "VPC", "WAF", "Certificate Manager",
	"Systems Manager",
}

var defaultFrameworks = []string{"ISO 27001", "SOC 2", "NIST CSF", "PCI DSS", "GDPR"}

// DefaultServices returns a copy of the built-in enforcing services.
func DefaultServices() []string { return append([]string(nil), defaultServices...) }

// DefaultFrameworks returns a copy of the built-in compliance framework
// names recognised in the Compliance Mapping column.
func DefaultFrameworks() []string { return append([]string(nil), defaultFrameworks...) }

// Validator applies the row rules. The zero value is not usable; create one
// with New.
type Validator struct {
	services   map[string]struct{}
	frameworks []string
}

// Option configures a Validator.
type Option func(*Validator)

// WithServices adds names to the recognised services.
func WithServices(names ...string) Option {
	return func(v *Validator) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				v.services[n] = struct{}{}
			}
		}
	}
}

// WithFrameworks adds names to the recognised compliance frameworks.
func WithFrameworks(names ...string) Option {
	return func(v *Validator) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				v.frameworks = append(v.frameworks, n)
			}
		}
	}
}

// New returns a Validator recognising the default services and frameworks
// plus any added by opts.
func New(opts ...Option) *Validator {
	v := &Validator{
		services:   make(map[string]struct{}, len(defaultServices)),
		frameworks: DefaultFrameworks(),
	}
	WithServices(defaultServices...)(v)
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate checks entries with the default rules and returns the error and
// warning messages in row order.
func Validate(entries []matrix.Entry) (errs, warnings []string) {
	set := New().Check(entries)
	return set.Errors(), set.Warnings()
}

// requiredFields lists the fields whose absence is an error, in report order.
var requiredFields = []struct {
	column string
	value  func(matrix.Entry) string
}{
	{matrix.ColumnDescription, func(e matrix.Entry) string { return e.Description }},
	{matrix.ColumnEnforcementMethod, func(e matrix.Entry) string { return e.EnforcementMethod }},
	{matrix.ColumnAutomatedCheck, func(e matrix.Entry) string { return e.AutomatedCheck }},
	{matrix.ColumnEvidenceArtifact, func(e matrix.Entry) string { return e.EvidenceArtifact }},
}

// Check validates every entry and returns the resulting issues.
func (v *Validator) Check(entries []matrix.Entry) *issues.Set {
	set := issues.NewSet()
	for i, e := range entries {
		row := matrix.RowNumber(i, e)
		add := func(code string, level issues.Level, msg string, meta map[string]string) {
			set.Add(issues.Issue{
				Code:          code,
				Level:         level,
				Row:           row,
				RequirementID: e.RequirementID,
				Message:       msg,
				Metadata:      meta,
			})
		}

		switch {
		case e.RequirementID == "":
			add(catalog.MissingRequirementID, issues.LevelError,
				fmt.Sprintf("Row %d: Missing Requirement ID", row), nil)
		case !requirements.ValidID(e.RequirementID):
			add(catalog.InvalidRequirementID, issues.LevelError,
				fmt.Sprintf("Row %d: Invalid Requirement ID format: %s", row, e.RequirementID), nil)
		}

		for _, f := range requiredFields {
			if f.value(e) == "" {
				add(catalog.MissingField, issues.LevelError,
					fmt.Sprintf("Row %d: Missing %s", row, f.column),
					map[string]string{"field": f.column})
			}
		}

		if e.Service == "" {
			add(catalog.MissingService, issues.LevelWarning,
				fmt.Sprintf("Row %d: Missing %s", row, matrix.ColumnService), nil)
		} else if _, ok := v.services[e.Service]; !ok {
			add(catalog.UnknownService, issues.LevelWarning,
				fmt.Sprintf("Row %d: Unknown AWS service: %s", row, e.Service),
				map[string]string{"service": e.Service})
		}

		for _, token := range strings.Split(e.ComplianceMapping, ",") {
			token = strings.TrimSpace(token)
			if token == "" || v.knownFramework(token) {
				continue
			}
			add(catalog.UnknownFramework, issues.LevelWarning,
				fmt.Sprintf("Row %d: Unknown compliance framework: %s", row, token),
				map[string]string{"framework": token})
		}
	}
	return set
}

// knownFramework accepts a bare framework name or a name followed by a
// control reference, such as "ISO 27001 A.9.2.3".
func (v *Validator) knownFramework(token string) bool {
	for _, name := range v.frameworks {
		if token == name || strings.HasPrefix(token, name+" ") {
			return true
		}
	}
	return false
}
