package watchtower

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"hostwatch/internal/alerts"
	"hostwatch/internal/db"
	"hostwatch/internal/metrics"
	"hostwatch/internal/notifier"
	"hostwatch/internal/triggerlog"
)

// Engine runs the alert-evaluation cycle: reload every rule, resolve it
// against the latest stored snapshot and fire its webhook when the
// condition holds. It keeps no state between cycles, so a rule that stays
// true fires again every cycle until the condition clears or the rule is
// deleted.
type Engine struct {
	repo     *db.Repository
	rules    *alerts.Store
	webhook  *notifier.Webhook
	triggers *triggerlog.Logger
	log      *slog.Logger
}

func NewEngine(repo *db.Repository, rules *alerts.Store, webhook *notifier.Webhook, triggers *triggerlog.Logger, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, rules: rules, webhook: webhook, triggers: triggers, log: logger}
}

// Evaluate runs one cycle. Every per-rule failure is logged and skips
// that rule only; nothing here aborts the loop.
func (e *Engine) Evaluate(ctx context.Context) {
	rules, err := e.rules.Load()
	if err != nil {
		e.log.Error("load alert rules", "err", err)
		return
	}
	for _, rule := range rules {
		cat, field, ok := metrics.ResolveKey(rule.MetricID)
		if !ok {
			e.log.Warn("invalid metric id", "rule", rule.ID.String(), "metric_id", rule.MetricID)
			continue
		}
		snap, err := e.repo.Latest(ctx, cat)
		if err != nil {
			e.log.Error("load latest metric", "category", string(cat), "err", err)
			continue
		}
		threshold, err := strconv.ParseFloat(rule.Value, 64)
		if err != nil {
			e.log.Warn("unparsable threshold", "rule", rule.ID.String(), "value", rule.Value)
			continue
		}
		value, ok := snap.Field(field)
		if !ok {
			e.log.Warn("invalid metric id", "rule", rule.ID.String(), "metric_id", rule.MetricID)
			continue
		}
		if !rule.Logic.Check(value, threshold) {
			continue
		}
		if err := e.webhook.Send(ctx, rule.Request, value); err != nil {
			e.log.Warn("webhook dispatch failed", "rule", rule.ID.String(), "err", err)
		}
		if err := e.triggers.Append(fmt.Sprintf("%s | %s", rule, snap)); err != nil {
			e.log.Error("append trigger log", "err", err)
		}
	}
}
