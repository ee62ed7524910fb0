package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgordon/kari-preview/internal/config"
	"github.com/irgordon/kari-preview/internal/core/domain"
)

// isolate clears every planner setting and preview context variable so the
// developer's shell cannot leak into a run.
func isolate(t *testing.T) {
	t.Helper()
	keys := []string{
		"PLANNER_ENV", "LOG_LEVEL", "LOG_FORMAT", "PLANNER_CONTEXT_FILE",
		"PLANNER_INVENTORY_FILE", "PLANNER_INVENTORY_URL",
		"PLANNER_INVENTORY_TIMEOUT", "PLANNER_INVENTORY_RETRIES", "PLANNER_OUTPUT",
	}
	for _, key := range config.ContextKeys() {
		env, _ := config.ContextEnvVar(key)
		keys = append(keys, env)
	}
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

var previewArgs = []string{
	"--context", "previewId=pr-42",
	"--context", "domain=preview.example.com",
	"--context", "ecrImageFrontend=shop-frontend:pr-42",
	"--context", "ecrImageBackend=shop-backend:pr-42",
}

func TestRun_Plan(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run(append([]string{"plan"}, previewArgs...), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var result domain.PlanResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, 26433, result.Plan.BasePriority)
	assert.Len(t, result.Plan.Rules, 2)

	// Logs never reach stdout.
	assert.Contains(t, stderr.String(), "Routing plan built")
}

func TestRun_PlanValidationFails(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"plan", "--context", "previewId=pr-42"}, &stdout, &stderr)

	assert.Equal(t, exitInvalidInput, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "ecrImageFrontend")
}

func TestRun_PlanCollision(t *testing.T) {
	isolate(t)
	inventory := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(inventory, []byte("rules:\n  - priority: 26433\n    host: pr-7.preview.example.com\n"), 0o600))

	args := append([]string{"plan", "--inventory-file", inventory, "-o", "yaml"}, previewArgs...)

	t.Run("warning only", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitOK, run(args, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "conflictHost: pr-7.preview.example.com")
	})

	t.Run("fail on collision", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitCollision, run(append(args, "--fail-on-collision"), &stdout, &stderr))
		assert.Contains(t, stderr.String(), "priority collision")
	})
}

func TestRun_PlanInventoryFlagWinsOverEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PLANNER_INVENTORY_FILE", "stale.yaml")
	t.Setenv("PLANNER_INVENTORY_URL", "https://inventory.internal/rules")

	inventory := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(inventory, []byte("rules: []\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(append([]string{"plan", "--inventory-file", inventory}, previewArgs...), &stdout, &stderr)
	assert.Equal(t, exitOK, code, stderr.String())
}

func TestRun_PlanInventoryMissing(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run(append([]string{"plan", "--inventory-file", "missing.yaml"}, previewArgs...), &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
}

func TestRun_Priority(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"priority", "pr-42"}, &stdout, &stderr))
	assert.Equal(t, "frontend 26433\nbackend  26933\n", stdout.String())

	assert.Equal(t, exitFailure, run([]string{"priority"}, &stdout, &stderr))
}

func TestRun_PriorityMatchesPlan(t *testing.T) {
	t.Run("surrounding space is trimmed", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.Equal(t, exitOK, run([]string{"priority", "  pr-42 "}, &stdout, &stderr))
		assert.Equal(t, "frontend 26433\nbackend  26933\n", stdout.String())
	})

	t.Run("blank id is invalid input", func(t *testing.T) {
		for _, id := range []string{"", "   ", "pr-\xff"} {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, exitInvalidInput, run([]string{"priority", id}, &stdout, &stderr), "id %q", id)
			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), "previewId")
		}
	})
}
