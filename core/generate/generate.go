// Package generate scaffolds a control matrix from a requirements document.
// Each parsed requirement becomes one row with a suggested enforcing
// service, enforcement method, automated check, evidence location and
// compliance mapping for a reviewer to refine.
package generate

import (
	"fmt"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/matrix"
	"github.com/nox-hq/ctrlmatrix/core/requirements"
)

// maxDescriptionLen bounds the description copied into the matrix.
const maxDescriptionLen = 100

// Entries builds one matrix entry per requirement, in document order.
func Entries(reqs []requirements.Requirement) []matrix.Entry {
	out := make([]matrix.Entry, 0, len(reqs))
	for i, r := range reqs {
		svc := SuggestService(r)
		desc := requirements.Truncate(r.Description, maxDescriptionLen)
		out = append(out, matrix.Entry{
			Row:               i + 2,
			RequirementID:     r.ID,
			Description:       strings.TrimSpace(desc),
			Service:           svc,
			EnforcementMethod: SuggestEnforcement(r, svc),
			AutomatedCheck:    SuggestCheck(svc),
			EvidenceArtifact:  SuggestEvidence(svc, r.ID),
			ComplianceMapping: SuggestMapping(r),
		})
	}
	return out
}

// FromDocument parses text and scaffolds its matrix entries. Identifiers
// the document mentions without a parsed heading get a placeholder row
// after the parsed ones, in sorted order, so every known ID is covered.
func FromDocument(text string) []matrix.Entry {
	return Entries(withMentioned(requirements.Parse(text), requirements.Extract(text)))
}

func withMentioned(reqs []requirements.Requirement, known requirements.Set) []requirements.Requirement {
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		seen[r.ID] = true
	}
	for _, id := range known.Sorted() {
		if seen[id] {
			continue
		}
		reqs = append(reqs, requirements.Requirement{
			ID:          id,
			Title:       id,
			Description: id,
			Category:    strings.SplitN(id, "-", 2)[0],
		})
	}
	return reqs
}

type keywordRule struct {
	value    string
	keywords []string
}

// serviceKeywords is ordered; ties resolve to the earlier service.
var serviceKeywords = []keywordRule{
	{"IAM", []string{"iam", "role", "policy", "permission", "access", "identity"}},
	{"Lambda", []string{"lambda", "function", "execution", "runtime", "concurrency"}},
	{"API Gateway", []string{"api", "gateway", "endpoint", "rest", "http"}},
	{"CloudWatch", []string{"cloudwatch", "log", "metric", "alarm", "monitoring"}},
	{"KMS", []string{"kms", "encryption", "key", "encrypt"}},
	{"Secrets Manager", []string{"secret", "credential", "password"}},
	{"Parameter Store", []string{"parameter", "configuration", "config"}},
	{"VPC", []string{"vpc", "network", "security group", "subnet"}},
	{"S3", []string{"s3", "bucket", "storage", "backup"}},
	{"DynamoDB", []string{"dynamodb", "database", "table"}},
	{"SQS", []string{"sqs", "queue", "message"}},
	{"SNS", []string{"sns", "notification", "topic"}},
	{"EventBridge", []string{"eventbridge", "event", "rule"}},
	{"X-Ray", []string{"xray", "x-ray", "tracing", "trace"}},
	{"CodeDeploy", []string{"codedeploy", "deployment", "canary"}},
	{"Config", []string{"config", "compliance", "rule"}},
	{"Security Hub", []string{"security hub", "security", "finding"}},
	{"WAF", []string{"waf", "web application firewall"}},
}

var categoryDefaults = map[string]string{
	"SEC": "IAM",
	"NFR": "CloudWatch",
	"LRR": "Lambda",
	"ESA": "API Gateway",
	"OBS": "CloudWatch",
}

const fallbackService = "Lambda"

// SuggestService scores each service by keyword hits in the requirement's
// description and title, falling back to a per-category default.
func SuggestService(r requirements.Requirement) string {
	content := strings.ToLower(r.Description + " " + r.Title)
	if best := bestMatch(content, serviceKeywords, 0); best != "" {
		return best
	}
	if svc, ok := categoryDefaults[r.Category]; ok {
		return svc
	}
	return fallbackService
}

// enforcementPatterns are checked in order against the description.
var enforcementPatterns = map[string][]keywordRule{
	"IAM": {
		{"IAM policy with least privilege principles", []string{"policy"}},
		{"IAM role configuration with permission boundaries", []string{"role"}},
		{"Permission boundary policy enforcement", []string{"boundary"}},
	},
	"Lambda": {
		{"Code Signing Configuration attachment", []string{"signing"}},
		{"Lambda versioning and alias configuration", []string{"version"}},
		{"Reserved/provisioned concurrency limits", []string{"concurrency"}},
	},
	"CloudWatch": {
		{"CloudWatch Logs configuration with retention", []string{"log"}},
		{"Custom metrics and alarm configuration", []string{"metric"}},
		{"CloudWatch alarm thresholds and actions", []string{"alarm"}},
	},
	"Config": {
		{"AWS Config rule evaluation", []string{"rule"}},
		{"Config compliance monitoring", []string{"compliance"}},
	},
}

var defaultEnforcement = map[string]string{
	"IAM":        "IAM policy configuration",
	"Lambda":     "Lambda function configuration",
	"CloudWatch": "CloudWatch configuration",
	"KMS":        "KMS key policy and configuration",
	"Config":     "AWS Config rule enforcement",
	"S3":         "S3 bucket policy and configuration",
}

// SuggestEnforcement proposes how svc enforces the requirement.
func SuggestEnforcement(r requirements.Requirement, svc string) string {
	content := strings.ToLower(r.Description)
	for _, p := range enforcementPatterns[svc] {
		if strings.Contains(content, p.keywords[0]) {
			return p.value
		}
	}
	if m, ok := defaultEnforcement[svc]; ok {
		return m
	}
	return svc + " configuration"
}

var automatedChecks = map[string]string{
	"IAM":             "IAM Access Analyzer",
	"Lambda":          "AWS Config Rule: lambda-function-settings-check",
	"CloudWatch":      "CloudWatch metrics and alarms",
	"KMS":             "AWS Config Rule: cmk-backing-key-rotation-enabled",
	"Secrets Manager": "AWS Config Rule: secretsmanager-rotation-enabled-check",
	"Parameter Store": "AWS Config Rule: ssm-document-not-public",
	"VPC":             "AWS Config Rule: lambda-inside-vpc",
	"API Gateway":     "AWS Config Rule: api-gw-associated-with-waf",
	"S3":              "S3 bucket compliance monitoring",
	"Config":          "Config rule evaluation status",
	"Security Hub":    "Security Hub findings aggregation",
	"X-Ray":           "X-Ray service map and trace analysis",
}

// SuggestCheck proposes the automated check verifying svc.
func SuggestCheck(svc string) string {
	if c, ok := automatedChecks[svc]; ok {
		return c
	}
	return svc + " compliance monitoring"
}

// SuggestEvidence proposes where evidence for the requirement is kept.
func SuggestEvidence(svc, id string) string {
	switch svc {
	case "IAM":
		return "CloudTrail logs: arn:aws:logs:*:*:log-group:/aws/cloudtrail/*"
	case "Lambda":
		return fmt.Sprintf("Lambda console configuration for %s", id)
	case "CloudWatch":
		return fmt.Sprintf("CloudWatch dashboard: %s-monitoring", strings.ToLower(id))
	case "KMS":
		return "KMS console key rotation status"
	case "Secrets Manager":
		return "Secrets Manager console rotation status"
	case "Parameter Store":
		return "Parameter Store console encryption status"
	case "Config":
		return fmt.Sprintf("Config compliance dashboard: %s", strings.ToLower(id))
	case "Security Hub":
		return "Security Hub findings dashboard"
	case "API Gateway":
		return "API Gateway console configuration"
	}
	return svc + " console configuration"
}

// mappingKeywords is ordered; only a strictly higher score replaces the
// current best.
var mappingKeywords = []keywordRule{
	{"ISO 27001 A.9.2.3", []string{"access", "privilege", "permission", "identity"}},
	{"ISO 27001 A.9.4.2", []string{"authentication", "mfa", "login", "session"}},
	{"ISO 27001 A.10.1.2", []string{"encryption", "key", "crypto", "secure"}},
	{"ISO 27001 A.12.4.1", []string{"log", "audit", "monitoring", "event"}},
	{"ISO 27001 A.12.3.1", []string{"backup", "recovery", "restore", "disaster"}},
	{"ISO 27001 A.13.1.1", []string{"network", "vpc", "security group", "firewall"}},
	{"SOC 2 CC6.1", []string{"logical", "access", "authorization"}},
	{"SOC 2 CC6.7", []string{"transmission", "transit", "communication"}},
	{"NIST CSF PR.AC-1", []string{"identity", "credential", "access"}},
}

const defaultMapping = "ISO 27001"

// SuggestMapping proposes the compliance control the requirement maps to.
func SuggestMapping(r requirements.Requirement) string {
	if best := bestMatch(strings.ToLower(r.Description), mappingKeywords, 0); best != "" {
		return best
	}
	return defaultMapping
}

// bestMatch returns the rule with the highest keyword hit count above
// floor, preferring earlier rules on ties, or "" if none scores.
func bestMatch(content string, rules []keywordRule, floor int) string {
	best, bestScore := "", floor
	for _, r := range rules {
		score := 0
		for _, k := range r.keywords {
			if strings.Contains(content, k) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = r.value, score
		}
	}
	return best
}
