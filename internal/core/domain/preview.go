package domain

import "strings"

// Configuration keys accepted in a RawConfig.
const (
	KeyPreviewID           = "previewId"
	KeyDomain              = "domain"
	KeyImageFrontend       = "ecrImageFrontend"
	KeyImageBackend        = "ecrImageBackend"
	KeyCPU                 = "cpu"
	KeyMemoryMiB           = "memoryMiB"
	KeyFrontendPort        = "frontendPort"
	KeyBackendPort         = "backendPort"
	KeyAPIPathPrefix       = "apiPathPrefix"
	KeyFrontendHealthPath  = "frontendHealthPath"
	KeyBackendHealthPath   = "backendHealthPath"
	KeySubnetIDsCSV        = "subnetIdsCsv"
	KeySecurityGroupIDsCSV = "securityGroupIdsCsv"
	KeyAssignPublicIP      = "assignPublicIp"
)

// RawConfig is the loosely-typed key-value record a preview is described with.
// Values arrive as strings regardless of source (env, context file, CLI).
type RawConfig map[string]string

// Lookup reports whether key was supplied at all. An empty value still counts
// as supplied.
func (c RawConfig) Lookup(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Merge returns a new RawConfig where entries of other override entries of c.
func (c RawConfig) Merge(other RawConfig) RawConfig {
	out := make(RawConfig, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// AssignPublicIP controls whether preview tasks get a public address.
type AssignPublicIP string

const (
	AssignPublicIPEnabled  AssignPublicIP = "ENABLED"
	AssignPublicIPDisabled AssignPublicIP = "DISABLED"
)

// ImageRef is a container image split into repository and tag.
type ImageRef struct {
	Repository string `json:"repository" yaml:"repository"`
	Tag        string `json:"tag" yaml:"tag"`
}

// String reassembles the "repository:tag" form.
func (r ImageRef) String() string {
	return r.Repository + ":" + r.Tag
}

// RepositoryName is the last path segment of the repository, which is how
// the registry names the repository inside an account.
func (r ImageRef) RepositoryName() string {
	if i := strings.LastIndex(r.Repository, "/"); i >= 0 {
		return r.Repository[i+1:]
	}
	return r.Repository
}

// PreviewSpec is the normalized, validated description of one preview
// environment. It is built once by the normalizer and never mutated.
type PreviewSpec struct {
	PreviewID string `json:"previewId" yaml:"previewId"`
	Domain    string `json:"domain" yaml:"domain"`
	Host      string `json:"host" yaml:"host"`

	FrontendImage ImageRef `json:"frontendImage" yaml:"frontendImage"`
	BackendImage  ImageRef `json:"backendImage" yaml:"backendImage"`

	CPU       int `json:"cpu" yaml:"cpu"`
	MemoryMiB int `json:"memoryMiB" yaml:"memoryMiB"`

	FrontendPort int `json:"frontendPort" yaml:"frontendPort"`
	BackendPort  int `json:"backendPort" yaml:"backendPort"`

	// APIPathPrefix empty means the preview is frontend-only.
	APIPathPrefix      string `json:"apiPathPrefix" yaml:"apiPathPrefix"`
	FrontendHealthPath string `json:"frontendHealthPath" yaml:"frontendHealthPath"`
	BackendHealthPath  string `json:"backendHealthPath" yaml:"backendHealthPath"`

	SubnetIDs        []string       `json:"subnetIds" yaml:"subnetIds"`
	SecurityGroupIDs []string       `json:"securityGroupIds" yaml:"securityGroupIds"`
	AssignPublicIP   AssignPublicIP `json:"assignPublicIp" yaml:"assignPublicIp"`
}

// HostFor derives the preview hostname.
func HostFor(previewID, domainName string) string {
	return previewID + "." + domainName
}
