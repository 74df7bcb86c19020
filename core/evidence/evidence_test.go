package evidence

import (
	"testing"

	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		artifact string
		code     string
		level    issues.Level
		message  string
	}{
		{name: "empty", artifact: ""},
		{name: "plain description", artifact: "KMS console key rotation status"},
		{name: "valid URL", artifact: "https://console.aws.amazon.com/iam/home"},
		{
			name:     "URL without host",
			artifact: "https:///iam/home",
			code:     catalog.InvalidEvidenceURL,
			level:    issues.LevelError,
			message:  "Row 2: Invalid URL format in evidence artifact: https:///iam/home",
		},
		{
			name:     "http prefix without scheme",
			artifact: "httpdocs",
			code:     catalog.InvalidEvidenceURL,
			level:    issues.LevelError,
			message:  "Row 2: Invalid URL format in evidence artifact: httpdocs",
		},
		{name: "valid ARN", artifact: "arn:aws:logs:us-east-1:123456789012:log-group:/aws/lambda/fn"},
		{name: "valid ARN with empty region", artifact: "arn:aws:iam::123456789012:role/exec"},
		{
			name:     "malformed ARN",
			artifact: "arn:aws:Logs",
			code:     catalog.InvalidEvidenceARN,
			level:    issues.LevelError,
			message:  "Row 2: Invalid ARN format in evidence artifact: arn:aws:Logs",
		},
		{name: "named dashboard", artifact: "CloudWatch dashboard: sec-001.1-monitoring"},
		{
			name:     "dashboard without name",
			artifact: "CloudWatch Dashboard",
			code:     catalog.UnclearDashboardRef,
			level:    issues.LevelWarning,
			message:  "Row 2: Evidence artifact may not be a valid dashboard reference: CloudWatch Dashboard",
		},
		{name: "absolute path", artifact: "/evidence/iam.json"},
		{name: "relative path", artifact: "./evidence/iam.json"},
		{
			name:     "ambiguous path",
			artifact: "evidence/iam.json",
			code:     catalog.UnclearEvidencePath,
			level:    issues.LevelWarning,
			message:  "Row 2: Evidence artifact path format unclear: evidence/iam.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			set := Check([]matrix.Entry{{RequirementID: "SEC-001.1", EvidenceArtifact: tt.artifact}})
			if tt.code == "" {
				if set.Len() != 0 {
					t.Fatalf("expected no issues, got %+v", set.Issues())
				}
				return
			}
			if set.Len() != 1 {
				t.Fatalf("expected 1 issue, got %d", set.Len())
			}
			got := set.Issues()[0]
			if got.Code != tt.code || got.Level != tt.level || got.Message != tt.message {
				t.Errorf("issue = %+v, want code=%s level=%s message=%q", got, tt.code, tt.level, tt.message)
			}
			if got.Row != 2 || got.RequirementID != "SEC-001.1" {
				t.Errorf("unexpected location %+v", got)
			}
		})
	}
}

func TestCheck_GeneratedArtifactsAreErrorFree(t *testing.T) {
	t.Parallel()

	artifacts := []string{
		"CloudTrail logs: arn:aws:logs:*:*:log-group:/aws/cloudtrail/*",
		"Lambda console configuration for SEC-001.1",
		"CloudWatch dashboard: sec-001.1-monitoring",
		"Config compliance dashboard: sec-001.1",
		"Security Hub findings dashboard",
	}
	var es []matrix.Entry
	for _, a := range artifacts {
		es = append(es, matrix.Entry{EvidenceArtifact: a})
	}
	if n := Check(es).Count(issues.LevelError); n != 0 {
		t.Fatalf("expected generated artifacts to raise no errors, got %d", n)
	}
}
