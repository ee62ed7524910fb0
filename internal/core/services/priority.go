package services

import (
	"strings"
	"unicode/utf16"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

// StableHash is the 32-bit polynomial rolling hash h = h*31 + unit, seeded at
// 0, over the UTF-16 code units of s. For ASCII identifiers the units are the
// bytes themselves. uint32 arithmetic wraps, which is the mod 2^32.
// Invalid UTF-8 bytes all decode to U+FFFD, so "\xff" and "\xfe" hash alike;
// Normalize rejects such preview IDs before they get here.
func StableHash(s string) uint32 {
	var h uint32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(unit)
	}
	return h
}

// AllocatePriority maps a preview ID into the band [20000, 27000).
//
// The mapping is deterministic so every run for the same preview lands on the
// same listener rules. Two different IDs can share a bucket: with 7000
// buckets the chance of some collision passes 50% at roughly 100 live
// previews. Use DetectCollisions against the live rule set to catch that.
func AllocatePriority(previewID string) int {
	return domain.PriorityBandStart + int(StableHash(previewID)%domain.PriorityBandWidth)
}

// BackendPriority is the backend rule's priority for a given base.
func BackendPriority(basePriority int) int {
	return basePriority + domain.BackendRuleOffset
}

// DetectCollisions flags every rule of plan whose priority is already held on
// the listener by a rule for a different host. Rules for the plan's own host
// are the previous run of this same preview and are not collisions.
func DetectCollisions(plan *domain.RoutingPlan, live []domain.ListenerRule) []domain.PriorityCollisionWarning {
	if plan == nil || len(live) == 0 {
		return nil
	}

	held := make(map[int][]string, len(live))
	for _, r := range live {
		held[r.Priority] = append(held[r.Priority], r.Host)
	}

	var warnings []domain.PriorityCollisionWarning
	for _, rule := range plan.Rules {
		for _, owner := range held[rule.Priority] {
			if strings.EqualFold(owner, rule.MatchHost) {
				continue
			}
			warnings = append(warnings, domain.PriorityCollisionWarning{
				Priority:     rule.Priority,
				Role:         rule.TargetRole,
				Host:         rule.MatchHost,
				ConflictHost: owner,
			})
			break
		}
	}
	return warnings
}
