package domain

// Keys describing where a preview is materialized. They are only required
// when a stack manifest is requested.
const (
	KeyClusterARN      = "clusterArn"
	KeyListenerARN     = "albListenerArn"
	KeyLoadBalancerARN = "loadBalancerArn"
	KeyHostedZoneID    = "hostedZoneId"
	KeyAccount         = "account"
	KeyRegion          = "region"
)

// ProvisioningTarget holds the shared infrastructure identifiers every
// preview attaches to.
type ProvisioningTarget struct {
	ClusterARN      string `json:"clusterArn" yaml:"clusterArn"`
	ClusterName     string `json:"clusterName" yaml:"clusterName"`
	ListenerARN     string `json:"listenerArn" yaml:"listenerArn"`
	LoadBalancerARN string `json:"loadBalancerArn" yaml:"loadBalancerArn"`
	HostedZoneID    string `json:"hostedZoneId" yaml:"hostedZoneId"`
	Account         string `json:"account" yaml:"account"`
	Region          string `json:"region" yaml:"region"`
}

// StackManifest is a provider-neutral description of every resource one
// preview needs. The provisioning layer turns it into API calls.
type StackManifest struct {
	StackName  string             `json:"stackName" yaml:"stackName"`
	PreviewURL string             `json:"previewUrl" yaml:"previewUrl"`
	Account    string             `json:"account" yaml:"account"`
	Region     string             `json:"region" yaml:"region"`
	Cluster    ClusterRef         `json:"cluster" yaml:"cluster"`
	DNS        DNSRecordSpec      `json:"dns" yaml:"dns"`
	LogGroup   LogGroupSpec       `json:"logGroup" yaml:"logGroup"`
	Task       TaskSpec           `json:"task" yaml:"task"`
	Service    ServiceSpec        `json:"service" yaml:"service"`
	Targets    []TargetGroupSpec  `json:"targetGroups" yaml:"targetGroups"`
	Rules      []ListenerRuleSpec `json:"listenerRules" yaml:"listenerRules"`
}

type ClusterRef struct {
	ARN  string `json:"arn" yaml:"arn"`
	Name string `json:"name" yaml:"name"`
}

// DNSRecordSpec is an alias record pointing the preview host at the shared
// load balancer.
type DNSRecordSpec struct {
	HostedZoneID string `json:"hostedZoneId" yaml:"hostedZoneId"`
	ZoneName     string `json:"zoneName" yaml:"zoneName"`
	RecordName   string `json:"recordName" yaml:"recordName"`
	Type         string `json:"type" yaml:"type"`
	AliasTarget  string `json:"aliasTarget" yaml:"aliasTarget"`
	TTLSeconds   int    `json:"ttlSeconds" yaml:"ttlSeconds"`
}

type LogGroupSpec struct {
	Name          string `json:"name" yaml:"name"`
	RetentionDays int    `json:"retentionDays" yaml:"retentionDays"`
}

type ContainerSpec struct {
	Name           string     `json:"name" yaml:"name"`
	Role           TargetRole `json:"role" yaml:"role"`
	Image          ImageRef   `json:"image" yaml:"image"`
	RepositoryName string     `json:"repositoryName" yaml:"repositoryName"`
	Port           int        `json:"port" yaml:"port"`
	StreamPrefix   string     `json:"streamPrefix" yaml:"streamPrefix"`
	Essential      bool       `json:"essential" yaml:"essential"`
}

type TaskSpec struct {
	CPU        int             `json:"cpu" yaml:"cpu"`
	MemoryMiB  int             `json:"memoryMiB" yaml:"memoryMiB"`
	Containers []ContainerSpec `json:"containers" yaml:"containers"`
}

type ServiceSpec struct {
	DesiredCount                  int             `json:"desiredCount" yaml:"desiredCount"`
	AssignPublicIP                bool            `json:"assignPublicIp" yaml:"assignPublicIp"`
	HealthCheckGracePeriodSeconds int             `json:"healthCheckGracePeriodSeconds" yaml:"healthCheckGracePeriodSeconds"`
	Placement                     PlacementPolicy `json:"placement" yaml:"placement"`
}

type TargetGroupSpec struct {
	Name                       string     `json:"name" yaml:"name"`
	Role                       TargetRole `json:"role" yaml:"role"`
	Port                       int        `json:"port" yaml:"port"`
	Protocol                   string     `json:"protocol" yaml:"protocol"`
	TargetType                 string     `json:"targetType" yaml:"targetType"`
	HealthCheckPath            string     `json:"healthCheckPath" yaml:"healthCheckPath"`
	HealthyHTTPCodes           string     `json:"healthyHttpCodes" yaml:"healthyHttpCodes"`
	DeregistrationDelaySeconds int        `json:"deregistrationDelaySeconds" yaml:"deregistrationDelaySeconds"`
}

// ListenerRuleSpec binds a RoutingRule to the target group serving its role.
type ListenerRuleSpec struct {
	ListenerARN string      `json:"listenerArn" yaml:"listenerArn"`
	Rule        RoutingRule `json:"rule" yaml:"rule"`
	TargetGroup string      `json:"targetGroup" yaml:"targetGroup"`
}
