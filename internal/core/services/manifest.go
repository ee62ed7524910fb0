package services

import (
	"fmt"
	"strings"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

// Fixed shape of every preview stack.
const (
	logGroupName            = "/ecs/preview"
	logRetentionDays        = 7
	dnsTTLSeconds           = 60
	serviceDesiredCount     = 1
	healthCheckGraceSeconds = 60
	deregistrationDelaySecs = 10
	healthyHTTPCodes        = "200"
	targetGroupProtocol     = "HTTP"
	targetGroupTargetType   = "ip"
	frontendContainerName   = "Frontend"
	backendContainerName    = "Backend"
	frontendTargetGroupName = "FeTg"
	backendTargetGroupName  = "BeTg"
)

// targetInput mirrors ProvisioningTarget for the validator.
type targetInput struct {
	ClusterARN      string `cfg:"clusterArn" validate:"required,startswith=arn:,contains=/"`
	ListenerARN     string `cfg:"albListenerArn" validate:"required,startswith=arn:"`
	LoadBalancerARN string `cfg:"loadBalancerArn" validate:"required,startswith=arn:"`
	HostedZoneID    string `cfg:"hostedZoneId" validate:"required"`
	Account         string `cfg:"account" validate:"required,len=12,numeric"`
	Region          string `cfg:"region" validate:"required"`
}

// NormalizeTarget validates the shared infrastructure identifiers. Nothing
// about them is inferred or defaulted: each one is required.
func NormalizeTarget(raw domain.RawConfig) (*domain.ProvisioningTarget, error) {
	in := targetInput{
		ClusterARN:      stringOr(raw, domain.KeyClusterARN, ""),
		ListenerARN:     stringOr(raw, domain.KeyListenerARN, ""),
		LoadBalancerARN: stringOr(raw, domain.KeyLoadBalancerARN, ""),
		HostedZoneID:    stringOr(raw, domain.KeyHostedZoneID, ""),
		Account:         stringOr(raw, domain.KeyAccount, ""),
		Region:          stringOr(raw, domain.KeyRegion, ""),
	}

	problems := structProblems(in)
	clusterName := ClusterNameFromARN(in.ClusterARN)
	if clusterName == "" && !hasProblem(problems, domain.KeyClusterARN) {
		problems = append(problems, domain.FieldProblem{
			Field:  domain.KeyClusterARN,
			Reason: `must name a cluster after "/"`,
		})
	}
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}

	return &domain.ProvisioningTarget{
		ClusterARN:      in.ClusterARN,
		ClusterName:     clusterName,
		ListenerARN:     in.ListenerARN,
		LoadBalancerARN: in.LoadBalancerARN,
		HostedZoneID:    in.HostedZoneID,
		Account:         in.Account,
		Region:          in.Region,
	}, nil
}

// ClusterNameFromARN returns the segment after the first "/" of a cluster
// ARN ("arn:aws:ecs:us-west-2:123456789012:cluster/previews" -> "previews").
func ClusterNameFromARN(arn string) string {
	parts := strings.Split(arn, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// BuildManifest describes every resource of one preview stack. It is pure:
// the provisioning layer is the only thing that acts on it.
func BuildManifest(spec *domain.PreviewSpec, plan *domain.RoutingPlan, target *domain.ProvisioningTarget) (*domain.StackManifest, error) {
	if spec == nil || plan == nil || target == nil {
		return nil, &domain.PreconditionError{Reason: "manifest needs a spec, a plan and a target"}
	}
	if len(plan.Rules) == 0 || plan.Rules[0].MatchHost != spec.Host {
		return nil, &domain.PreconditionError{Reason: fmt.Sprintf("plan does not route host %q", spec.Host)}
	}

	m := &domain.StackManifest{
		StackName:  "Preview-" + spec.PreviewID,
		PreviewURL: "https://" + spec.Host,
		Account:    target.Account,
		Region:     target.Region,
		Cluster: domain.ClusterRef{
			ARN:  target.ClusterARN,
			Name: target.ClusterName,
		},
		DNS: domain.DNSRecordSpec{
			HostedZoneID: target.HostedZoneID,
			ZoneName:     spec.Domain,
			RecordName:   spec.Host,
			Type:         "A",
			AliasTarget:  target.LoadBalancerARN,
			TTLSeconds:   dnsTTLSeconds,
		},
		LogGroup: domain.LogGroupSpec{
			Name:          logGroupName,
			RetentionDays: logRetentionDays,
		},
		Task: domain.TaskSpec{
			CPU:       spec.CPU,
			MemoryMiB: spec.MemoryMiB,
			Containers: []domain.ContainerSpec{
				container(frontendContainerName, domain.RoleFrontend, spec.FrontendImage, spec.FrontendPort, "fe-"+spec.PreviewID),
				container(backendContainerName, domain.RoleBackend, spec.BackendImage, spec.BackendPort, "be-"+spec.PreviewID),
			},
		},
		Service: domain.ServiceSpec{
			DesiredCount:                  serviceDesiredCount,
			AssignPublicIP:                spec.AssignPublicIP != domain.AssignPublicIPDisabled,
			HealthCheckGracePeriodSeconds: healthCheckGraceSeconds,
			Placement:                     plan.Placement,
		},
		Targets: []domain.TargetGroupSpec{
			targetGroup(frontendTargetGroupName, domain.RoleFrontend, spec.FrontendPort, spec.FrontendHealthPath),
			targetGroup(backendTargetGroupName, domain.RoleBackend, spec.BackendPort, spec.BackendHealthPath),
		},
	}

	for _, rule := range plan.Rules {
		tg := frontendTargetGroupName
		if rule.TargetRole == domain.RoleBackend {
			tg = backendTargetGroupName
		}
		m.Rules = append(m.Rules, domain.ListenerRuleSpec{
			ListenerARN: target.ListenerARN,
			Rule:        rule,
			TargetGroup: tg,
		})
	}

	return m, nil
}

func hasProblem(problems []domain.FieldProblem, field string) bool {
	for _, p := range problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

func container(name string, role domain.TargetRole, image domain.ImageRef, port int, streamPrefix string) domain.ContainerSpec {
	return domain.ContainerSpec{
		Name:           name,
		Role:           role,
		Image:          image,
		RepositoryName: image.RepositoryName(),
		Port:           port,
		StreamPrefix:   streamPrefix,
		Essential:      true,
	}
}

func targetGroup(name string, role domain.TargetRole, port int, healthPath string) domain.TargetGroupSpec {
	return domain.TargetGroupSpec{
		Name:                       name,
		Role:                       role,
		Port:                       port,
		Protocol:                   targetGroupProtocol,
		TargetType:                 targetGroupTargetType,
		HealthCheckPath:            healthPath,
		HealthyHTTPCodes:           healthyHTTPCodes,
		DeregistrationDelaySeconds: deregistrationDelaySecs,
	}
}
