package adapters

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

// FileInventory reads a rule inventory exported by the provisioning layer.
// YAML and JSON files are both accepted.
type FileInventory struct {
	path string
}

func NewFileInventory(path string) *FileInventory {
	return &FileInventory{path: path}
}

func (f *FileInventory) ListRules(ctx context.Context) ([]domain.ListenerRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule inventory: %w", err)
	}

	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule inventory %s: %w", f.path, err)
	}
	return doc.Rules, nil
}
