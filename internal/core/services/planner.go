package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

// planNamespace scopes plan IDs so they never collide with other v5 UUIDs.
var planNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://kari.dev/preview-planner/plan"))

// PlannerService runs normalize -> allocate -> build for one preview and,
// when an inventory is wired, checks the result against the live listener.
// It holds no mutable state and is safe for concurrent use.
type PlannerService struct {
	inventory domain.PriorityInventory
	logger    *slog.Logger
}

// NewPlannerService wires the planner. inventory may be nil, in which case
// collision detection is skipped.
func NewPlannerService(inventory domain.PriorityInventory, logger *slog.Logger) *PlannerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlannerService{
		inventory: inventory,
		logger:    logger,
	}
}

// PlanOptions toggles the optional parts of a planning run.
type PlanOptions struct {
	// WithManifest additionally validates the provisioning target keys and
	// attaches a full stack manifest to the result.
	WithManifest bool
}

// Plan derives everything the provisioning layer needs for the preview
// described by raw. Validation failures are returned before any planning
// happens. Collision warnings never fail the run.
func (s *PlannerService) Plan(ctx context.Context, raw domain.RawConfig, opts PlanOptions) (*domain.PlanResult, error) {
	// 1. 🛡️ Reject at the boundary
	spec, err := Normalize(raw)
	if err != nil {
		s.logger.Warn("Preview config rejected", slog.Any("error", err))
		return nil, err
	}

	var target *domain.ProvisioningTarget
	if opts.WithManifest {
		if target, err = NormalizeTarget(raw); err != nil {
			s.logger.Warn("Provisioning target rejected", slog.String("preview_id", spec.PreviewID), slog.Any("error", err))
			return nil, err
		}
	}

	// 2. Allocate and build
	base := AllocatePriority(spec.PreviewID)
	plan, err := BuildPlan(spec, base)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan for %s: %w", spec.PreviewID, err)
	}

	s.logger.Info("Routing plan built",
		slog.String("preview_id", spec.PreviewID),
		slog.String("host", spec.Host),
		slog.Int("base_priority", base),
		slog.Int("rules", len(plan.Rules)),
		slog.String("placement", string(plan.Placement.Kind)))

	result := &domain.PlanResult{
		Spec: spec,
		Plan: plan,
	}

	if opts.WithManifest {
		if result.Manifest, err = BuildManifest(spec, plan, target); err != nil {
			return nil, fmt.Errorf("failed to build manifest for %s: %w", spec.PreviewID, err)
		}
	}

	// 3. Advisory collision check against the live listener
	if s.inventory != nil {
		live, err := s.inventory.ListRules(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read listener rule inventory: %w", err)
		}
		result.Warnings = DetectCollisions(plan, live)
		for _, w := range result.Warnings {
			s.logger.Warn("Priority collision",
				slog.String("preview_id", spec.PreviewID),
				slog.Int("priority", w.Priority),
				slog.String("role", string(w.Role)),
				slog.String("conflict_host", w.ConflictHost))
		}
	}

	if result.PlanID, err = PlanID(plan); err != nil {
		return nil, err
	}

	return result, nil
}

// PlanID is a v5 UUID over the canonical JSON of the plan, so identical
// plans always carry identical IDs.
func PlanID(plan *domain.RoutingPlan) (string, error) {
	if plan == nil {
		return "", errors.New("plan id: nil plan")
	}
	canonical, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("plan id: failed to encode plan: %w", err)
	}
	return uuid.NewSHA1(planNamespace, canonical).String(), nil
}
