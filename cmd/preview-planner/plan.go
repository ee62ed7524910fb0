package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/irgordon/kari-preview/internal/adapters"
	"github.com/irgordon/kari-preview/internal/config"
	"github.com/irgordon/kari-preview/internal/core/domain"
	"github.com/irgordon/kari-preview/internal/core/services"
	"github.com/irgordon/kari-preview/internal/delivery/render"
	"github.com/irgordon/kari-preview/internal/telemetry"
)

// collisionError is returned only when --fail-on-collision is set.
type collisionError struct {
	warnings []domain.PriorityCollisionWarning
}

func (e *collisionError) Error() string {
	parts := make([]string, len(e.warnings))
	for i, w := range e.warnings {
		parts[i] = w.Error()
	}
	return fmt.Sprintf("%d priority collision(s): %s", len(e.warnings), strings.Join(parts, "; "))
}

type planFlags struct {
	contexts        []string
	contextFile     string
	inventoryFile   string
	inventoryURL    string
	output          string
	manifest        bool
	failOnCollision bool
}

func newPlanCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the routing plan for one preview",
		Long:  planLongHelp(),
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. Settings: environment first, flags on top, then validated once
			cfg, err := config.Load(planFlagOverride(cmd, flags))
			if err != nil {
				return err
			}

			logger := telemetry.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)

			// 2. Preview context from file, env and --context pairs
			raw, err := config.ResolveContext(cfg.ContextFile, flags.contexts)
			if err != nil {
				return err
			}

			// 3. Plan
			planner := services.NewPlannerService(inventoryFor(cfg, logger), logger)
			result, err := planner.Plan(cmd.Context(), raw, services.PlanOptions{WithManifest: flags.manifest})
			if err != nil {
				return err
			}

			if err := render.Write(stdout, cfg.OutputFormat, result); err != nil {
				return err
			}

			if flags.failOnCollision && len(result.Warnings) > 0 {
				return &collisionError{warnings: result.Warnings}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&flags.contexts, "context", "c", nil, "preview context as key=value (repeatable)")
	f.StringVar(&flags.contextFile, "context-file", "", "YAML or JSON context file (overrides PLANNER_CONTEXT_FILE)")
	f.StringVar(&flags.inventoryFile, "inventory-file", "", "listener rule inventory file for collision checks")
	f.StringVar(&flags.inventoryURL, "inventory-url", "", "listener rule inventory endpoint for collision checks")
	f.StringVarP(&flags.output, "output", "o", "", "output format: json or yaml (overrides PLANNER_OUTPUT)")
	f.BoolVar(&flags.manifest, "manifest", false, "also emit the full stack manifest (requires provisioning target keys)")
	f.BoolVar(&flags.failOnCollision, "fail-on-collision", false, "exit non-zero when a priority collides with a live rule")

	return cmd
}

func planFlagOverride(cmd *cobra.Command, flags planFlags) config.Override {
	return func(cfg *config.Config) {
		applyPlanFlags(cmd, cfg, flags)
	}
}

func applyPlanFlags(cmd *cobra.Command, cfg *config.Config, flags planFlags) {
	set := cmd.Flags().Changed
	if set("context-file") {
		cfg.ContextFile = flags.contextFile
	}
	if set("inventory-file") {
		cfg.InventoryFile = flags.inventoryFile
		cfg.InventoryURL = ""
	}
	if set("inventory-url") {
		cfg.InventoryURL = flags.inventoryURL
		if !set("inventory-file") {
			cfg.InventoryFile = ""
		}
	}
	if set("output") {
		cfg.OutputFormat = strings.ToLower(flags.output)
	}
}

// inventoryFor returns nil when no inventory is configured, which turns
// collision detection off.
func inventoryFor(cfg *config.Config, logger *slog.Logger) domain.PriorityInventory {
	switch {
	case cfg.InventoryFile != "":
		return adapters.NewFileInventory(cfg.InventoryFile)
	case cfg.InventoryURL != "":
		return adapters.NewHTTPInventory(cfg.InventoryURL, cfg.InventoryTimeout, cfg.InventoryRetries, logger)
	}
	return nil
}

func planLongHelp() string {
	var b strings.Builder
	b.WriteString("Compute the listener rules, priorities and network placement for one preview.\n\n")
	b.WriteString("Context keys (lowest to highest precedence: context file, environment, --context):\n")
	for _, key := range config.ContextKeys() {
		env, _ := config.ContextEnvVar(key)
		fmt.Fprintf(&b, "  %-22s %s\n", key, env)
	}
	return b.String()
}
