package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/services"
)

// SnapshotHandler handles whole-graph export and import.
type SnapshotHandler struct {
	service *services.SnapshotService
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(service *services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: service}
}

// HandleExport writes the readable portion of the graph as indented JSON.
func (h *SnapshotHandler) HandleExport(ctx context.Context, actor entities.Identity, w io.Writer) error {
	snap, err := h.service.Export(ctx, actor)
	if err != nil {
		return fmt.Errorf("exporting snapshot: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// HandleImport reads a JSON snapshot and loads it with the named conflict
// strategy.
func (h *SnapshotHandler) HandleImport(ctx context.Context, actor entities.Identity, r io.Reader, strategy string) (*services.ImportStats, error) {
	parsed, err := services.ParseConflictStrategy(strategy)
	if err != nil {
		return nil, err
	}
	var snap services.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decoding snapshot: %v", entities.ErrValidation, err)
	}
	return h.service.Import(ctx, actor, &snap, parsed)
}
