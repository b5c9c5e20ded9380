package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/snapshot"
	"github.com/papercomputeco/tunegate/pkg/storage"
)

var (
	snapshotStatusToolName    = "snapshot_status"
	snapshotStatusDescription = "Show the training snapshot stored for a resource: when it was recorded, by which framework version, and which pipeline nodes, actions and labels it covers."

	checkCompatibilityToolName    = "check_compatibility"
	checkCompatibilityDescription = "Dry-run a finetuning compatibility check of a project directory against the stored training snapshot. Returns every mismatch that would force training from scratch. Nothing is persisted."
)

// SnapshotStatusInput represents the input arguments for the snapshot_status tool.
type SnapshotStatusInput struct {
	Resource string `json:"resource,omitempty" jsonschema:"the snapshot resource name (default: the configured resource)"`
}

// SnapshotStatusOutput represents the output of the snapshot_status tool.
type SnapshotStatusOutput struct {
	Resource         string         `json:"resource"`
	Exists           bool           `json:"exists"`
	SnapshotID       string         `json:"snapshot_id,omitempty"`
	Fingerprint      string         `json:"fingerprint,omitempty"`
	FrameworkVersion string         `json:"framework_version,omitempty"`
	Finetuned        bool           `json:"finetuned"`
	CreatedAt        string         `json:"created_at,omitempty"`
	NodeIDs          []string       `json:"node_ids,omitempty"`
	ActionCount      int            `json:"action_count"`
	LabelCounts      map[string]int `json:"label_counts,omitempty"`
}

// CheckCompatibilityInput represents the input arguments for the check_compatibility tool.
type CheckCompatibilityInput struct {
	ProjectDir string `json:"project_dir" jsonschema:"path of the project directory holding config.yml, domain.yml and data/"`
	Resource   string `json:"resource,omitempty" jsonschema:"the snapshot resource name (default: the configured resource)"`
	Scope      string `json:"scope,omitempty" jsonschema:"checks to run: core+nlu (default), core, nlu or schema"`
}

// CheckCompatibilityOutput represents the output of the check_compatibility tool.
type CheckCompatibilityOutput struct {
	Resource   string              `json:"resource"`
	Scope      string              `json:"scope"`
	Compatible bool                `json:"compatible"`
	BaselineID string              `json:"baseline_id,omitempty"`
	Mismatches []finetune.Mismatch `json:"mismatches"`
}

// handleSnapshotStatus reports the stored snapshot of a resource.
func (s *Server) handleSnapshotStatus(ctx context.Context, _ *mcp.CallToolRequest, input SnapshotStatusInput) (*mcp.CallToolResult, SnapshotStatusOutput, error) {
	resource := s.config.Gate.Resource(input.Resource)
	s.config.Logger.Debug("MCP snapshot status request", "resource", resource)

	snap, err := s.config.Gate.Store.Get(ctx, resource)
	if storage.IsNotFound(err) {
		return textResult(SnapshotStatusOutput{Resource: resource})
	}
	if err != nil {
		s.config.Logger.Error("failed to load snapshot", "resource", resource, "error", err)
		return errorResult[SnapshotStatusOutput]("Failed to load snapshot: %v", err)
	}

	return textResult(buildSnapshotStatus(resource, snap))
}

// handleCheckCompatibility runs a dry-run report for a project directory.
func (s *Server) handleCheckCompatibility(ctx context.Context, _ *mcp.CallToolRequest, input CheckCompatibilityInput) (*mcp.CallToolResult, CheckCompatibilityOutput, error) {
	if strings.TrimSpace(input.ProjectDir) == "" {
		return errorResult[CheckCompatibilityOutput]("project_dir is required")
	}

	scope, err := finetune.ParseScope(input.Scope)
	if err != nil {
		return errorResult[CheckCompatibilityOutput]("%v", err)
	}

	resource := s.config.Gate.Resource(input.Resource)
	s.config.Logger.Debug("MCP compatibility request",
		"resource", resource,
		"project_dir", input.ProjectDir,
		"scope", scope.String(),
	)

	imp := project.NewFileImporter(input.ProjectDir)
	schema, err := imp.Schema(ctx)
	if err != nil {
		return errorResult[CheckCompatibilityOutput]("Failed to read pipeline schema: %v", err)
	}

	checker, err := s.config.Gate.Checker(ctx, resource, true, schema)
	if errors.Is(err, finetune.ErrMissingSnapshot) {
		return errorResult[CheckCompatibilityOutput]("No snapshot stored for %q. Train a model first.", resource)
	}
	if err != nil {
		s.config.Logger.Error("failed to create checker", "resource", resource, "error", err)
		return errorResult[CheckCompatibilityOutput]("Failed to load snapshot: %v", err)
	}

	report, err := checker.Report(ctx, imp, scope)
	if err != nil {
		return errorResult[CheckCompatibilityOutput]("Failed to compare project: %v", err)
	}

	return textResult(CheckCompatibilityOutput{
		Resource:   report.Resource,
		Scope:      report.Scope.String(),
		Compatible: report.Compatible(),
		BaselineID: report.BaselineID,
		Mismatches: report.Mismatches,
	})
}

func buildSnapshotStatus(resource string, snap *snapshot.Snapshot) SnapshotStatusOutput {
	out := SnapshotStatusOutput{
		Resource:         resource,
		Exists:           true,
		SnapshotID:       snap.ID,
		Fingerprint:      snap.Fingerprint,
		FrameworkVersion: snap.FrameworkVersion,
		Finetuned:        snap.Finetuned,
		CreatedAt:        snap.CreatedAt.Format(time.RFC3339),
		NodeIDs:          snap.NodeIDs(),
		ActionCount:      len(snap.DomainActions),
		LabelCounts:      make(map[string]int, len(snap.Labels)),
	}
	for key, values := range snap.Labels {
		out.LabelCounts[string(key)] = len(values)
	}
	return out
}

// textResult returns the structured output together with its JSON
// serialization in a TextContent block for clients that ignore structured
// content.
func textResult[T any](output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult[T]("Failed to serialize results: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func errorResult[T any](format string, args ...any) (*mcp.CallToolResult, T, error) {
	var zero T
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}, zero, nil
}
