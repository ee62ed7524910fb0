package services

import (
	"fmt"
	"strings"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

// BuildPlan combines a normalized spec with its allocated priority into the
// ordered rule set for the shared listener.
//
// The frontend rule is always emitted. The backend rule is only emitted when
// the preview carries a non-blank API path prefix, so a frontend-only preview
// never gets an unreachable backend rule. The builder does not re-validate
// its input, but it fails closed with a PreconditionError on anything the
// normalizer could not have produced.
func BuildPlan(spec *domain.PreviewSpec, basePriority int) (*domain.RoutingPlan, error) {
	if err := checkPreconditions(spec, basePriority); err != nil {
		return nil, err
	}

	rules := []domain.RoutingRule{{
		Priority:   basePriority,
		MatchHost:  spec.Host,
		TargetRole: domain.RoleFrontend,
	}}

	if prefix := strings.TrimSpace(spec.APIPathPrefix); prefix != "" {
		rules = append(rules, domain.RoutingRule{
			Priority:        BackendPriority(basePriority),
			MatchHost:       spec.Host,
			MatchPathPrefix: prefix,
			TargetRole:      domain.RoleBackend,
		})
	}

	return &domain.RoutingPlan{
		BasePriority: basePriority,
		Rules:        rules,
		Placement:    ResolvePlacement(spec.SubnetIDs, spec.SecurityGroupIDs),
	}, nil
}

// ResolvePlacement pins the service to the given IDs when any are supplied
// and otherwise leaves the choice to the provisioning layer. IDs are taken
// verbatim; their existence is the provisioning layer's concern.
func ResolvePlacement(subnetIDs, securityGroupIDs []string) domain.PlacementPolicy {
	if len(subnetIDs) == 0 && len(securityGroupIDs) == 0 {
		return domain.DefaultPlacement()
	}
	return domain.ExplicitPlacement(subnetIDs, securityGroupIDs)
}

func checkPreconditions(spec *domain.PreviewSpec, basePriority int) error {
	switch {
	case spec == nil:
		return &domain.PreconditionError{Reason: "spec is nil"}
	case spec.PreviewID == "" || spec.Domain == "":
		return &domain.PreconditionError{Reason: "spec has no preview ID or domain"}
	case spec.Host == "":
		return &domain.PreconditionError{Reason: "spec has no host"}
	case spec.Host != domain.HostFor(spec.PreviewID, spec.Domain):
		return &domain.PreconditionError{
			Reason: fmt.Sprintf("host %q does not match preview %q under %q", spec.Host, spec.PreviewID, spec.Domain),
		}
	case basePriority < domain.PriorityBandStart || basePriority >= domain.PriorityBandFinish:
		return &domain.PreconditionError{
			Reason: fmt.Sprintf("base priority %d outside [%d, %d)", basePriority, domain.PriorityBandStart, domain.PriorityBandFinish),
		}
	}
	return nil
}
