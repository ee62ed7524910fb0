package domain

import "context"

// Priority band reserved for preview rules on the shared listener.
const (
	PriorityBandStart  = 20000
	PriorityBandWidth  = 7000
	BackendRuleOffset  = 500
	PriorityBandFinish = PriorityBandStart + PriorityBandWidth
)

// TargetRole names which process of the preview a rule forwards to.
type TargetRole string

const (
	RoleFrontend TargetRole = "FRONTEND"
	RoleBackend  TargetRole = "BACKEND"
)

// RoutingRule is one (priority, match, target) triple on the shared listener.
type RoutingRule struct {
	Priority        int        `json:"priority" yaml:"priority"`
	MatchHost       string     `json:"matchHost" yaml:"matchHost"`
	MatchPathPrefix string     `json:"matchPathPrefix,omitempty" yaml:"matchPathPrefix,omitempty"`
	TargetRole      TargetRole `json:"targetRole" yaml:"targetRole"`
}

// HasPathCondition reports whether the rule matches on a path as well as a host.
func (r RoutingRule) HasPathCondition() bool {
	return r.MatchPathPrefix != ""
}

// PlacementKind tags a PlacementPolicy.
type PlacementKind string

const (
	// PlacementDefault defers subnet and security group selection to the
	// provisioning layer (public subnets, default security group).
	PlacementDefault PlacementKind = "DEFAULT"
	// PlacementExplicit pins the network interfaces to the listed IDs.
	PlacementExplicit PlacementKind = "EXPLICIT"
)

// PlacementPolicy is Explicit(subnetIDs, securityGroupIDs) or Default.
// Inside Explicit an empty list still means "provisioning layer default" for
// that one dimension.
type PlacementPolicy struct {
	Kind             PlacementKind `json:"kind" yaml:"kind"`
	SubnetIDs        []string      `json:"subnetIds,omitempty" yaml:"subnetIds,omitempty"`
	SecurityGroupIDs []string      `json:"securityGroupIds,omitempty" yaml:"securityGroupIds,omitempty"`
}

func DefaultPlacement() PlacementPolicy {
	return PlacementPolicy{Kind: PlacementDefault}
}

func ExplicitPlacement(subnetIDs, securityGroupIDs []string) PlacementPolicy {
	return PlacementPolicy{
		Kind:             PlacementExplicit,
		SubnetIDs:        append([]string(nil), subnetIDs...),
		SecurityGroupIDs: append([]string(nil), securityGroupIDs...),
	}
}

func (p PlacementPolicy) IsDefault() bool {
	return p.Kind == PlacementDefault
}

// RoutingPlan is what the provisioning layer materializes into listener rules.
// It is never mutated after the builder returns it.
type RoutingPlan struct {
	BasePriority int             `json:"basePriority" yaml:"basePriority"`
	Rules        []RoutingRule   `json:"rules" yaml:"rules"`
	Placement    PlacementPolicy `json:"placement" yaml:"placement"`
}

// Rule returns the rule forwarding to role, if the plan has one.
func (p *RoutingPlan) Rule(role TargetRole) (RoutingRule, bool) {
	for _, r := range p.Rules {
		if r.TargetRole == role {
			return r, true
		}
	}
	return RoutingRule{}, false
}

// PlanResult bundles everything a provisioning run needs for one preview.
type PlanResult struct {
	PlanID   string                     `json:"planId" yaml:"planId"`
	Spec     *PreviewSpec               `json:"spec" yaml:"spec"`
	Plan     *RoutingPlan               `json:"plan" yaml:"plan"`
	Manifest *StackManifest             `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Warnings []PriorityCollisionWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ListenerRule is a rule already live on the shared listener, as reported by
// the provisioning layer.
type ListenerRule struct {
	Priority int    `json:"priority" yaml:"priority"`
	Host     string `json:"host" yaml:"host"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

// PriorityInventory exposes the listener's live rule set so the planner can
// flag priorities already held by another preview.
// 🛡️ Implementations talk to the provisioning layer; the core never does.
type PriorityInventory interface {
	ListRules(ctx context.Context) ([]ListenerRule, error)
}
