package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/fingerprint"
	"github.com/papercomputeco/tunegate/pkg/storage"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListSnapshots handles GET /v1/snapshots.
func (s *Server) handleListSnapshots(c *fiber.Ctx) error {
	entries, err := s.gate.Store.List(c.Context())
	if err != nil {
		s.logger.Error("failed to list snapshots", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list snapshots"})
	}

	out := SnapshotListResponse{Snapshots: make([]SnapshotSummary, 0, len(entries))}
	for _, e := range entries {
		out.Snapshots = append(out.Snapshots, SnapshotSummary{
			Resource:    e.Resource,
			SnapshotID:  e.SnapshotID,
			Fingerprint: e.Fingerprint,
			CreatedAt:   e.CreatedAt,
		})
	}
	out.Count = len(out.Snapshots)

	return c.JSON(out)
}

// handleGetSnapshot handles GET /v1/snapshots/:resource.
func (s *Server) handleGetSnapshot(c *fiber.Ctx) error {
	resource := c.Params("resource")

	snap, err := s.gate.Store.Get(c.Context(), resource)
	if storage.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "snapshot not found"})
	}
	if err != nil {
		s.logger.Error("failed to get snapshot", "resource", resource, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get snapshot"})
	}

	return c.JSON(snap)
}

// handleDeleteSnapshot handles DELETE /v1/snapshots/:resource.
func (s *Server) handleDeleteSnapshot(c *fiber.Ctx) error {
	resource := c.Params("resource")

	err := s.gate.Store.Delete(c.Context(), resource)
	if storage.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "snapshot not found"})
	}
	if err != nil {
		s.logger.Error("failed to delete snapshot", "resource", resource, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete snapshot"})
	}

	s.logger.Info("snapshot deleted", "resource", resource)
	return c.SendStatus(fiber.StatusNoContent)
}

// handleTrain handles POST /v1/train/:resource. It records a fresh baseline
// without comparing against the previous one.
func (s *Server) handleTrain(c *fiber.Ctx) error {
	req, err := parseCheckRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	resource := c.Params("resource")
	checker, err := s.gate.Checker(c.Context(), resource, false, req.Schema)
	if err != nil {
		return s.checkerError(c, resource, err)
	}

	if err := checker.Validate(c.Context(), req.Importer()); err != nil {
		s.logger.Error("failed to record snapshot", "resource", resource, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to record snapshot"})
	}

	baseline := checker.Baseline()
	return c.Status(fiber.StatusCreated).JSON(ValidationResponse{
		Resource:    checker.Resource(),
		Scope:       finetune.FullScope.String(),
		Compatible:  true,
		SnapshotID:  baseline.ID,
		Fingerprint: baseline.Fingerprint,
	})
}

// handleValidate handles POST /v1/validate/:resource. A compatible request
// replaces the stored baseline; an incompatible one returns 409.
func (s *Server) handleValidate(c *fiber.Ctx) error {
	req, err := parseCheckRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	resource := c.Params("resource")
	checker, err := s.gate.Checker(c.Context(), resource, true, req.Schema)
	if err != nil {
		return s.checkerError(c, resource, err)
	}

	scope := req.Scope()
	resp := ValidationResponse{
		Resource:   checker.Resource(),
		Finetuning: true,
		Scope:      scope.String(),
	}

	err = checker.ValidateScope(c.Context(), req.Importer(), scope)
	var incompatible *finetune.IncompatibilityError
	switch {
	case errors.As(err, &incompatible):
		resp.Category = incompatible.Category
		resp.Mismatches = incompatible.Mismatches
		resp.Error = incompatible.Error()
		return c.Status(fiber.StatusConflict).JSON(resp)

	case err != nil:
		s.logger.Error("failed to validate", "resource", resource, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to validate"})
	}

	baseline := checker.Baseline()
	resp.Compatible = true
	resp.SnapshotID = baseline.ID
	resp.Fingerprint = baseline.Fingerprint
	return c.JSON(resp)
}

// handleDiff handles POST /v1/diff/:resource. It reports every mismatch
// without persisting anything.
func (s *Server) handleDiff(c *fiber.Ctx) error {
	req, err := parseCheckRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	resource := c.Params("resource")
	checker, err := s.gate.Checker(c.Context(), resource, true, req.Schema)
	if err != nil {
		return s.checkerError(c, resource, err)
	}

	report, err := checker.Report(c.Context(), req.Importer(), req.Scope())
	if err != nil {
		s.logger.Error("failed to build report", "resource", resource, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to build report"})
	}

	return c.JSON(report)
}

func (s *Server) checkerError(c *fiber.Ctx, resource string, err error) error {
	if errors.Is(err, finetune.ErrMissingSnapshot) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}

	s.logger.Error("failed to create checker", "resource", resource, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create checker"})
}

func parseCheckRequest(c *fiber.Ctx) (*CheckRequest, error) {
	var req CheckRequest
	if err := fingerprint.Decode(c.Body(), &req); err != nil {
		return nil, errors.New("invalid request body")
	}
	if len(req.Schema.Nodes) == 0 {
		return nil, errors.New("schema must contain at least one node")
	}
	for id, node := range req.Schema.Nodes {
		if id == "" || node.Uses == "" {
			return nil, errors.New("every schema node needs an id and a uses field")
		}
	}
	return &req, nil
}
