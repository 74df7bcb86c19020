// Package server implements the ctrlmatrix MCP server, exposing control
// matrix validation to agents over stdio.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/compliance"
	"github.com/nox-hq/ctrlmatrix/core/discovery"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
	"github.com/nox-hq/ctrlmatrix/core/report"
	"github.com/nox-hq/ctrlmatrix/core/report/sarif"
	"github.com/nox-hq/ctrlmatrix/core/requirements"
)

const (
	// maxOutputBytes is the maximum response size before truncation (1 MB).
	maxOutputBytes = 1 << 20

	noResultMessage = "no validation results available, run the validate_matrix tool first"
)

// Server is the ctrlmatrix MCP server.
type Server struct {
	version      string
	allowedPaths []string
	opts         core.Options

	mu    sync.RWMutex
	cache *core.Result
}

// Option configures a Server.
type Option func(*Server)

// WithValidateOptions sets the options used by the validate_matrix tool.
func WithValidateOptions(o core.Options) Option {
	return func(s *Server) { s.opts = o }
}

// New creates a new MCP server. If allowedPaths is empty, any path is allowed.
func New(version string, allowedPaths []string, opts ...Option) *Server {
	resolved := make([]string, 0, len(allowedPaths))
	for _, p := range allowedPaths {
		abs, err := filepath.Abs(p)
		if err == nil {
			resolved = append(resolved, abs)
		}
	}
	s := &Server{
		version:      version,
		allowedPaths: resolved,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Serve starts the MCP server on stdio and blocks until the client disconnects.
func (s *Server) Serve() error {
	srv := mcpserver.NewMCPServer(
		report.ToolName,
		s.version,
		mcpserver.WithRecovery(),
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
	)

	s.registerTools(srv)
	s.registerResources(srv)

	return mcpserver.ServeStdio(srv)
}

func (s *Server) registerTools(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcp.NewTool("validate_matrix",
			mcp.WithDescription("Validate a control matrix CSV against a production readiness requirements document"),
			mcp.WithString("prr",
				mcp.Description("Path to the requirements document"),
				mcp.Required(),
			),
			mcp.WithString("matrix",
				mcp.Description("Path to the control matrix CSV"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleValidate,
	)

	srv.AddTool(
		mcp.NewTool("extract_requirements",
			mcp.WithDescription("List the requirement IDs declared in a requirements document"),
			mcp.WithString("prr",
				mcp.Description("Path to the requirements document"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleExtract,
	)

	srv.AddTool(
		mcp.NewTool("compliance_coverage",
			mcp.WithDescription("Score critical control coverage of ISO 27001, SOC 2 and NIST CSF in a control matrix"),
			mcp.WithString("matrix",
				mcp.Description("Path to the control matrix CSV"),
				mcp.Required(),
			),
			mcp.WithString("framework",
				mcp.Description("Framework to score (ISO27001, SOC2 or NISTCSF); all when omitted"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleCoverage,
	)

	srv.AddTool(
		mcp.NewTool("discover_inputs",
			mcp.WithDescription("Find control matrices and requirements documents under a directory"),
			mcp.WithString("dir",
				mcp.Description("Directory to search"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleDiscover,
	)

	srv.AddTool(
		mcp.NewTool("get_report",
			mcp.WithDescription("Get the report of the last validation"),
			mcp.WithString("format",
				mcp.Description("Output format: json or sarif"),
				mcp.Enum("json", "sarif"),
				mcp.DefaultString("json"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleGetReport,
	)
}

func (s *Server) registerResources(srv *mcpserver.MCPServer) {
	srv.AddResource(
		mcp.NewResource("ctrlmatrix://report", "Validation report",
			mcp.WithResourceDescription("Last control matrix validation in ctrlmatrix JSON format"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceReport,
	)

	srv.AddResource(
		mcp.NewResource("ctrlmatrix://sarif", "SARIF Report",
			mcp.WithResourceDescription("Last control matrix validation in SARIF 2.1.0 format"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceSARIF,
	)
}

// isPathAllowed checks if the given path is under one of the allowed workspace roots.
func (s *Server) isPathAllowed(path string) error {
	if len(s.allowedPaths) == 0 {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path: %w", err)
	}

	for _, allowed := range s.allowedPaths {
		rel, err := filepath.Rel(allowed, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}

	return fmt.Errorf("path %q is outside allowed workspaces", path)
}

// requirePath reads a required path argument and checks it is allowed.
func (s *Server) requirePath(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	path, err := request.RequireString(name)
	if err != nil || path == "" {
		return "", mcp.NewToolResultError("missing required argument: " + name)
	}
	if err := s.isPathAllowed(path); err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return path, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prr, errResult := s.requirePath(request, "prr")
	if errResult != nil {
		return errResult, nil
	}
	matrixPath, errResult := s.requirePath(request, "matrix")
	if errResult != nil {
		return errResult, nil
	}

	result, err := core.Validate(ctx, prr, matrixPath, s.opts)
	if err != nil {
		return mcp.NewToolResultError(inputError(err)), nil
	}

	s.mu.Lock()
	s.cache = result
	s.mu.Unlock()

	summary := fmt.Sprintf("Validation %s: %d errors, %d warnings, coverage %.2f%%",
		report.Status(result), len(result.Errors), len(result.Warnings),
		result.CoverageStats[core.StatCoveragePercentage])
	var b strings.Builder
	b.WriteString(summary)
	for _, e := range result.Errors {
		b.WriteString("\nerror: " + e)
	}
	for _, w := range result.Warnings {
		b.WriteString("\nwarning: " + w)
	}
	return mcp.NewToolResultText(truncate(b.String())), nil
}

// extraction is the extract_requirements tool payload.
type extraction struct {
	Path           string   `json:"path"`
	Count          int      `json:"count"`
	RequirementIDs []string `json:"requirement_ids"`
}

func (s *Server) handleExtract(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prr, errResult := s.requirePath(request, "prr")
	if errResult != nil {
		return errResult, nil
	}

	reqs, err := requirements.ExtractFile(prr)
	if err != nil {
		return mcp.NewToolResultError(inputError(err)), nil
	}
	return jsonResult(extraction{Path: prr, Count: reqs.Len(), RequirementIDs: reqs.Sorted()})
}

func (s *Server) handleDiscover(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, errResult := s.requirePath(request, "dir")
	if errResult != nil {
		return errResult, nil
	}

	w, err := discovery.NewWalker(dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading ignore files: %v", err)), nil
	}
	all, err := w.Walk()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("walking %s: %v", dir, err)), nil
	}
	found := make([]discovery.Input, 0, len(all))
	for _, in := range all {
		if in.Kind != discovery.Unknown {
			found = append(found, in)
		}
	}
	return jsonResult(found)
}

func (s *Server) handleCoverage(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matrixPath, errResult := s.requirePath(request, "matrix")
	if errResult != nil {
		return errResult, nil
	}

	var fws []compliance.Framework
	if name := request.GetString("framework", ""); name != "" {
		fw, ok := compliance.Lookup(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown framework: %s", name)), nil
		}
		fws = append(fws, fw)
	}

	m, err := matrix.Load(matrixPath)
	if err != nil {
		return mcp.NewToolResultError(inputError(err)), nil
	}
	return jsonResult(compliance.ScoreAll(m.Entries, fws...))
}

func (s *Server) handleGetReport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cache := s.cached()
	if cache == nil {
		return mcp.NewToolResultError(noResultMessage), nil
	}

	data, err := s.render(request.GetString("format", "json"), cache)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report generation failed: %v", err)), nil
	}
	return mcp.NewToolResultText(truncate(string(data))), nil
}

func (s *Server) handleResourceReport(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return s.readResource(request, "json")
}

func (s *Server) handleResourceSARIF(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return s.readResource(request, "sarif")
}

func (s *Server) readResource(request mcp.ReadResourceRequest, format string) ([]mcp.ResourceContents, error) {
	cache := s.cached()
	if cache == nil {
		return nil, errors.New("no validation results available")
	}

	data, err := s.render(format, cache)
	if err != nil {
		return nil, fmt.Errorf("generating %s report: %w", format, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     truncate(string(data)),
		},
	}, nil
}

func (s *Server) cached() *core.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache
}

func (s *Server) render(format string, r *core.Result) ([]byte, error) {
	if format == "sarif" {
		return sarif.NewReporter(s.version).Generate(r)
	}
	return report.NewJSONReporter(s.version).Generate(r)
}

// inputError phrases input failures the same way the CLI does.
func inputError(err error) string {
	var docErr *requirements.DocumentNotFoundError
	var matrixErr *matrix.MatrixNotFoundError
	switch {
	case errors.As(err, &docErr):
		return "PRR file not found: " + docErr.Path
	case errors.As(err, &matrixErr):
		return "control matrix file not found: " + matrixErr.Path
	default:
		return err.Error()
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(truncate(string(data))), nil
}

// truncate limits output to maxOutputBytes, appending a truncation notice if needed.
func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	return s[:maxOutputBytes] + "\n... [truncated: output exceeded 1MB limit]"
}
