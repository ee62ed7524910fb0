package services

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

// Use a single instance of Validate, it caches struct info
var validate = newValidator()

// newValidator reports failures under the raw config key (the `cfg` tag)
// instead of the Go field name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("cfg")
	})
	return v
}

// Defaults applied when a key is absent from the raw config.
const (
	DefaultCPU                = 512
	DefaultMemoryMiB          = 1024
	DefaultFrontendPort       = 80
	DefaultBackendPort        = 80
	DefaultAPIPathPrefix      = "/api/*"
	DefaultFrontendHealthPath = "/"
	DefaultBackendHealthPath  = "/healthz"
)

// previewInput is the typed intermediate the validator runs over. The field
// tags carry the raw config key so problems can be reported by key.
type previewInput struct {
	PreviewID          string `cfg:"previewId" validate:"required"`
	Domain             string `cfg:"domain" validate:"required"`
	FrontendImage      string `cfg:"ecrImageFrontend" validate:"required"`
	BackendImage       string `cfg:"ecrImageBackend" validate:"required"`
	CPU                int    `cfg:"cpu" validate:"gt=0"`
	MemoryMiB          int    `cfg:"memoryMiB" validate:"gt=0"`
	FrontendPort       int    `cfg:"frontendPort" validate:"min=1,max=65535"`
	BackendPort        int    `cfg:"backendPort" validate:"min=1,max=65535"`
	FrontendHealthPath string `cfg:"frontendHealthPath" validate:"required"`
	BackendHealthPath  string `cfg:"backendHealthPath" validate:"required"`
	AssignPublicIP     string `cfg:"assignPublicIp" validate:"oneof=ENABLED DISABLED"`
}

// Normalize turns a raw key-value record into a validated PreviewSpec.
// It performs no I/O. Every rejected key is reported in one ValidationError.
func Normalize(raw domain.RawConfig) (*domain.PreviewSpec, error) {
	var problems []domain.FieldProblem

	in := previewInput{
		PreviewID:          stringOr(raw, domain.KeyPreviewID, ""),
		Domain:             stringOr(raw, domain.KeyDomain, ""),
		FrontendImage:      stringOr(raw, domain.KeyImageFrontend, ""),
		BackendImage:       stringOr(raw, domain.KeyImageBackend, ""),
		FrontendHealthPath: stringOr(raw, domain.KeyFrontendHealthPath, DefaultFrontendHealthPath),
		BackendHealthPath:  stringOr(raw, domain.KeyBackendHealthPath, DefaultBackendHealthPath),
		AssignPublicIP:     stringOr(raw, domain.KeyAssignPublicIP, ""),
	}
	if in.AssignPublicIP == "" {
		in.AssignPublicIP = string(domain.AssignPublicIPEnabled)
	}

	// 1. Numeric fields: a value that is not an integer never reaches the validator
	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{domain.KeyCPU, DefaultCPU, &in.CPU},
		{domain.KeyMemoryMiB, DefaultMemoryMiB, &in.MemoryMiB},
		{domain.KeyFrontendPort, DefaultFrontendPort, &in.FrontendPort},
		{domain.KeyBackendPort, DefaultBackendPort, &in.BackendPort},
	}
	for _, f := range ints {
		v, err := intOr(raw, f.key, f.fallback)
		if err != nil {
			problems = append(problems, domain.FieldProblem{Field: f.key, Reason: err.Error()})
			// Keep the validator quiet about a field already reported.
			*f.dst = 1
			continue
		}
		*f.dst = v
	}

	// 2. Struct-level rules
	problems = append(problems, structProblems(in)...)
	if !utf8.ValidString(in.PreviewID) {
		// StableHash would fold every invalid byte into U+FFFD.
		problems = append(problems, domain.FieldProblem{Field: domain.KeyPreviewID, Reason: "must be valid UTF-8"})
	}

	// 3. Image references
	var frontend, backend domain.ImageRef
	if in.FrontendImage != "" {
		ref, err := ParseImageRef(in.FrontendImage)
		if err != nil {
			problems = append(problems, domain.FieldProblem{Field: domain.KeyImageFrontend, Reason: err.Error()})
		}
		frontend = ref
	}
	if in.BackendImage != "" {
		ref, err := ParseImageRef(in.BackendImage)
		if err != nil {
			problems = append(problems, domain.FieldProblem{Field: domain.KeyImageBackend, Reason: err.Error()})
		}
		backend = ref
	}

	if len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}

	return &domain.PreviewSpec{
		PreviewID:          in.PreviewID,
		Domain:             in.Domain,
		Host:               domain.HostFor(in.PreviewID, in.Domain),
		FrontendImage:      frontend,
		BackendImage:       backend,
		CPU:                in.CPU,
		MemoryMiB:          in.MemoryMiB,
		FrontendPort:       in.FrontendPort,
		BackendPort:        in.BackendPort,
		APIPathPrefix:      stringOr(raw, domain.KeyAPIPathPrefix, DefaultAPIPathPrefix),
		FrontendHealthPath: in.FrontendHealthPath,
		BackendHealthPath:  in.BackendHealthPath,
		SubnetIDs:          ParseCSV(stringOr(raw, domain.KeySubnetIDsCSV, "")),
		SecurityGroupIDs:   ParseCSV(stringOr(raw, domain.KeySecurityGroupIDsCSV, "")),
		AssignPublicIP:     domain.AssignPublicIP(in.AssignPublicIP),
	}, nil
}

// ParseImageRef splits "repository:tag" at the last colon, so registry hosts
// with a port ("host:5000/repo:v1") keep their port in the repository.
func ParseImageRef(spec string) (domain.ImageRef, error) {
	spec = strings.TrimSpace(spec)
	i := strings.LastIndex(spec, ":")
	if i < 0 {
		return domain.ImageRef{}, fmt.Errorf("invalid image spec %q (expected repo:tag)", spec)
	}
	repo, tag := spec[:i], spec[i+1:]
	if repo == "" || tag == "" {
		return domain.ImageRef{}, fmt.Errorf("invalid image spec %q (expected repo:tag)", spec)
	}
	// "localhost:5000/app" has no tag; the last colon belongs to the registry port.
	if strings.Contains(tag, "/") {
		return domain.ImageRef{}, fmt.Errorf("invalid image spec %q (missing tag)", spec)
	}
	return domain.ImageRef{Repository: repo, Tag: tag}, nil
}

// ParseCSV splits a comma-separated ID list, trimming whitespace and dropping
// empty entries left by stray commas. Order is preserved.
func ParseCSV(csv string) []string {
	ids := []string{}
	for _, part := range strings.Split(csv, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func stringOr(raw domain.RawConfig, key, fallback string) string {
	v, ok := raw.Lookup(key)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(v)
}

func intOr(raw domain.RawConfig, key string, fallback int) (int, error) {
	v, ok := raw.Lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %q", v)
	}
	return n, nil
}

// structProblems runs the validator and maps each failure back to its raw key.
func structProblems(in any) []domain.FieldProblem {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.FieldProblem{{Field: "config", Reason: err.Error()}}
	}
	problems := make([]domain.FieldProblem, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, domain.FieldProblem{
			Field:  fe.Field(),
			Reason: describe(fe),
		})
	}
	return problems
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be a positive integer"
	case "min", "max":
		return fmt.Sprintf("must be between 1 and 65535, got %v", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "len":
		return fmt.Sprintf("must be %s characters long", fe.Param())
	case "numeric":
		return "must contain only digits"
	case "contains":
		return fmt.Sprintf("must contain %q", fe.Param())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
