package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgordon/kari-preview/internal/core/domain"
	"github.com/irgordon/kari-preview/internal/core/services"
)

func normalized(t *testing.T, raw domain.RawConfig) *domain.PreviewSpec {
	t.Helper()
	spec, err := services.Normalize(raw)
	require.NoError(t, err)
	return spec
}

func TestBuildPlan_FrontendAndBackend(t *testing.T) {
	spec := normalized(t, validRaw())

	plan, err := services.BuildPlan(spec, 26433)
	require.NoError(t, err)

	assert.Equal(t, 26433, plan.BasePriority)
	require.Len(t, plan.Rules, 2)

	fe := plan.Rules[0]
	assert.Equal(t, 26433, fe.Priority)
	assert.Equal(t, "pr-42.preview.example.com", fe.MatchHost)
	assert.Equal(t, domain.RoleFrontend, fe.TargetRole)
	assert.False(t, fe.HasPathCondition())

	be, ok := plan.Rule(domain.RoleBackend)
	require.True(t, ok)
	assert.Equal(t, 26933, be.Priority)
	assert.Equal(t, "/api/*", be.MatchPathPrefix)
	assert.Equal(t, fe.MatchHost, be.MatchHost)

	assert.True(t, plan.Placement.IsDefault())
}

func TestBuildPlan_FrontendOnly(t *testing.T) {
	for _, prefix := range []string{"", "   "} {
		spec := normalized(t, validRaw())
		spec.APIPathPrefix = prefix

		plan, err := services.BuildPlan(spec, 20000)
		require.NoError(t, err)
		require.Len(t, plan.Rules, 1)
		assert.Equal(t, domain.RoleFrontend, plan.Rules[0].TargetRole)

		_, ok := plan.Rule(domain.RoleBackend)
		assert.False(t, ok)
	}
}

func TestBuildPlan_TrimsPrefix(t *testing.T) {
	spec := normalized(t, validRaw())
	spec.APIPathPrefix = "  /graphql  "

	plan, err := services.BuildPlan(spec, 21000)
	require.NoError(t, err)
	be, ok := plan.Rule(domain.RoleBackend)
	require.True(t, ok)
	assert.Equal(t, "/graphql", be.MatchPathPrefix)
}

func TestBuildPlan_Placement(t *testing.T) {
	t.Run("explicit subnets and groups", func(t *testing.T) {
		spec := normalized(t, validRaw().Merge(domain.RawConfig{
			domain.KeySubnetIDsCSV:        "subnet-a,subnet-b",
			domain.KeySecurityGroupIDsCSV: "sg-1",
		}))
		plan, err := services.BuildPlan(spec, 22000)
		require.NoError(t, err)

		assert.Equal(t, domain.PlacementExplicit, plan.Placement.Kind)
		assert.Equal(t, []string{"subnet-a", "subnet-b"}, plan.Placement.SubnetIDs)
		assert.Equal(t, []string{"sg-1"}, plan.Placement.SecurityGroupIDs)

		// The plan owns its own copy.
		spec.SubnetIDs[0] = "subnet-z"
		assert.Equal(t, "subnet-a", plan.Placement.SubnetIDs[0])
	})

	t.Run("security groups alone are explicit", func(t *testing.T) {
		p := services.ResolvePlacement(nil, []string{"sg-1"})
		assert.Equal(t, domain.PlacementExplicit, p.Kind)
		assert.Empty(t, p.SubnetIDs)
	})

	t.Run("nothing given", func(t *testing.T) {
		assert.True(t, services.ResolvePlacement([]string{}, nil).IsDefault())
	})
}

func TestBuildPlan_Preconditions(t *testing.T) {
	good := normalized(t, validRaw())

	cases := map[string]struct {
		spec *domain.PreviewSpec
		base int
	}{
		"nil spec":           {nil, 20000},
		"below the band":     {good, 19999},
		"at the band finish": {good, domain.PriorityBandFinish},
		"host mismatch": {func() *domain.PreviewSpec {
			s := *good
			s.Host = "other.preview.example.com"
			return &s
		}(), 20000},
		"no host": {func() *domain.PreviewSpec {
			s := *good
			s.Host = ""
			return &s
		}(), 20000},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			plan, err := services.BuildPlan(tc.spec, tc.base)
			assert.Nil(t, plan)
			var perr *domain.PreconditionError
			assert.True(t, errors.As(err, &perr), "got %v", err)
		})
	}
}
