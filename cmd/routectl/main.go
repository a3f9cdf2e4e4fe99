package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/lead"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/listing"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
	"github.com/homeward-crm/lead-routing-engine/internal/infrastructure/config"
	"github.com/homeward-crm/lead-routing-engine/internal/infrastructure/telemetry"
	"github.com/homeward-crm/lead-routing-engine/internal/service/leadrouting"
	"github.com/homeward-crm/lead-routing-engine/internal/service/ruledraft"
)

func main() {
	var (
		action       = flag.String("action", "validate", "Action: validate, evaluate, route, draft")
		rulePath     = flag.String("rule", "", "Path to a routing rule config JSON file")
		leadPath     = flag.String("lead", "", "Path to a lead JSON file")
		listingPath  = flag.String("listing", "", "Path to a listing JSON file (optional)")
		payloadPath  = flag.String("payload", "", "Path to a route-lead payload JSON file")
		at           = flag.String("at", "", "Evaluation instant, RFC3339 (default: now)")
		prompt       = flag.String("prompt", "", "Natural-language prompt (draft action)")
		defaultTeam  = flag.String("default-team", "", "Default team id (draft action)")
		fallbackTeam = flag.String("fallback-team", "", "Fallback team id (draft action)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	switch *action {
	case "validate":
		err = runValidate(*rulePath)
	case "evaluate":
		err = runEvaluate(*rulePath, *leadPath, *listingPath, *at)
	case "route":
		err = runRoute(*payloadPath, logger)
	case "draft":
		err = runDraft(cfg, logger, *prompt, *defaultTeam, *fallbackTeam)
	default:
		err = fmt.Errorf("unknown action %q", *action)
	}

	if err != nil {
		logger.Error("command failed", "action", *action, "error", err)
		os.Exit(1)
	}
}

func runValidate(rulePath string) error {
	cfg, err := loadRule(rulePath)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"valid":   true,
		"targets": len(cfg.Targets),
		"mode":    cfg.Mode,
	})
}

func runEvaluate(rulePath, leadPath, listingPath, at string) error {
	cfg, err := loadRule(rulePath)
	if err != nil {
		return err
	}

	var ld lead.Lead
	if err := readJSONFile(leadPath, &ld); err != nil {
		return fmt.Errorf("loading lead: %w", err)
	}

	var lst *listing.Listing
	if listingPath != "" {
		lst = &listing.Listing{}
		if err := readJSONFile(listingPath, lst); err != nil {
			return fmt.Errorf("loading listing: %w", err)
		}
	}

	now := time.Now()
	if at != "" {
		now, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("parsing -at: %w", err)
		}
	}

	evaluation := leadrouting.EvaluateConditions(&cfg.Conditions, leadrouting.EvalContext{
		Lead:    &ld,
		Listing: lst,
		Now:     now,
	})
	return printJSON(evaluation)
}

func runRoute(payloadPath string, logger *slog.Logger) error {
	var payload leadrouting.RouteLeadPayload
	if err := readJSONFile(payloadPath, &payload); err != nil {
		return fmt.Errorf("loading payload: %w", err)
	}

	metrics := leadrouting.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	svc := leadrouting.NewService(nil, metrics, logger)

	decision, err := svc.RouteLead(context.Background(), &payload)
	if err != nil {
		return err
	}

	return printJSON(decision)
}

func runDraft(cfg *config.Config, logger *slog.Logger, prompt, defaultTeam, fallbackTeam string) error {
	req := &ruledraft.DraftRequest{Prompt: prompt}

	var err error
	if defaultTeam != "" {
		if req.DefaultTeamID, err = uuid.Parse(defaultTeam); err != nil {
			return fmt.Errorf("parsing -default-team: %w", err)
		}
	}
	if fallbackTeam != "" {
		if req.FallbackTeamID, err = uuid.Parse(fallbackTeam); err != nil {
			return fmt.Errorf("parsing -fallback-team: %w", err)
		}
	}

	var llm ruledraft.ChatCompleter
	if cfg.LLM.Enabled {
		client, err := ruledraft.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			logger.Warn("assistant disabled", "error", err)
		} else {
			llm = client
		}
	}

	drafter := ruledraft.NewDrafter(llm, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout)
	defer cancel()

	draft, err := drafter.DraftRule(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(draft)
}

func loadRule(path string) (*routing.RoutingRuleConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("-rule is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule config: %w", err)
	}
	return routing.ParseRuleConfig(data)
}

func readJSONFile(path string, v interface{}) error {
	if path == "" {
		return fmt.Errorf("file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
