package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

// contextEnv maps preview context keys to the environment variables a CI
// pipeline can set instead of passing --context pairs.
var contextEnv = map[string]string{
	domain.KeyPreviewID:           "PREVIEW_ID",
	domain.KeyDomain:              "PREVIEW_DOMAIN",
	domain.KeyImageFrontend:       "PREVIEW_ECR_IMAGE_FRONTEND",
	domain.KeyImageBackend:        "PREVIEW_ECR_IMAGE_BACKEND",
	domain.KeyCPU:                 "PREVIEW_CPU",
	domain.KeyMemoryMiB:           "PREVIEW_MEMORY_MIB",
	domain.KeyFrontendPort:        "PREVIEW_FRONTEND_PORT",
	domain.KeyBackendPort:         "PREVIEW_BACKEND_PORT",
	domain.KeyAPIPathPrefix:       "PREVIEW_API_PATH_PREFIX",
	domain.KeyFrontendHealthPath:  "PREVIEW_FRONTEND_HEALTH_PATH",
	domain.KeyBackendHealthPath:   "PREVIEW_BACKEND_HEALTH_PATH",
	domain.KeySubnetIDsCSV:        "PREVIEW_SUBNET_IDS",
	domain.KeySecurityGroupIDsCSV: "PREVIEW_SECURITY_GROUP_IDS",
	domain.KeyAssignPublicIP:      "PREVIEW_ASSIGN_PUBLIC_IP",
	domain.KeyClusterARN:          "PREVIEW_CLUSTER_ARN",
	domain.KeyListenerARN:         "PREVIEW_ALB_LISTENER_ARN",
	domain.KeyLoadBalancerARN:     "PREVIEW_LOAD_BALANCER_ARN",
	domain.KeyHostedZoneID:        "PREVIEW_HOSTED_ZONE_ID",
	domain.KeyAccount:             "PREVIEW_ACCOUNT",
	domain.KeyRegion:              "PREVIEW_REGION",
}

// ContextEnvVar returns the environment variable backing a context key.
func ContextEnvVar(key string) (string, bool) {
	v, ok := contextEnv[key]
	return v, ok
}

// ContextFromEnv collects every preview context key present in the
// environment. A variable set to the empty string still counts as present.
func ContextFromEnv() domain.RawConfig {
	raw := domain.RawConfig{}
	for key, env := range contextEnv {
		if v, ok := os.LookupEnv(env); ok {
			raw[key] = v
		}
	}
	return raw
}

// LoadContextFile reads a YAML or JSON context file. Both a flat map and a
// cdk.json-style document with a top-level "context" object are accepted.
// Scalars are kept as their literal text: "0123" stays "0123" rather than
// being read as an octal number.
func LoadContextFile(path string) (domain.RawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse context file %s: %w", path, err)
	}

	raw := domain.RawConfig{}
	if len(doc.Content) == 0 {
		return raw, nil // empty file
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("context file %s: expected a map of keys", path)
	}
	if nested := mappingValue(root, "context"); nested != nil && nested.Kind == yaml.MappingNode {
		root = nested
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value, present, err := nodeString(root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("context file %s: key %q: %w", path, key, err)
		}
		if !present {
			continue // "key: null" reads as absent
		}
		raw[key] = value
	}
	return raw, nil
}

// ParseContextPairs parses repeated key=value flags. Later pairs win.
func ParseContextPairs(pairs []string) (domain.RawConfig, error) {
	raw := domain.RawConfig{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid context pair %q (expected key=value)", pair)
		}
		raw[key] = value
	}
	return raw, nil
}

// ResolveContext layers the sources: file, then environment, then flags.
func ResolveContext(contextFile string, pairs []string) (domain.RawConfig, error) {
	raw := domain.RawConfig{}

	if contextFile != "" {
		fromFile, err := LoadContextFile(contextFile)
		if err != nil {
			return nil, err
		}
		raw = raw.Merge(fromFile)
	}

	raw = raw.Merge(ContextFromEnv())

	fromFlags, err := ParseContextPairs(pairs)
	if err != nil {
		return nil, err
	}
	return raw.Merge(fromFlags), nil
}

// ContextKeys lists the supported keys in a stable order.
func ContextKeys() []string {
	keys := make([]string, 0, len(contextEnv))
	for k := range contextEnv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolveAlias(m.Content[i+1])
		}
	}
	return nil
}

// nodeString returns the literal text of a scalar. A list of IDs is accepted
// where a CSV is expected.
func nodeString(n *yaml.Node) (string, bool, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return "", false, nil
		}
		return n.Value, true, nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return "", false, errors.New("list items must be plain values")
			}
			parts = append(parts, item.Value)
		}
		return strings.Join(parts, ","), true, nil
	}
	return "", false, errors.New("unsupported nested value")
}
