package watch

import (
	"context"
	"log/slog"
	"strings"
)

// Engine runs check cycles. It is stateless between invocations: all
// persisted state lives in the SnapshotStore. One invocation owns a
// target's snapshot for the duration of its cycle (read then write);
// invocations are assumed non-overlapping — they are externally
// scheduled, so no in-process locking is applied.
type Engine struct {
	fetch  FetchFunc
	store  SnapshotStore
	notify Notifier
	logger *slog.Logger
}

// New creates an Engine. logger may be nil.
func New(fetch FetchFunc, store SnapshotStore, notifier Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{fetch: fetch, store: store, notify: notifier, logger: logger}
}

// CheckAll runs one check cycle per target, sequentially, in the given
// order. One target's failure never aborts the others.
func (e *Engine) CheckAll(ctx context.Context, targets []Target) []TargetResult {
	results := make([]TargetResult, 0, len(targets))
	for _, t := range targets {
		res := e.Check(ctx, t)
		e.logger.Info("check complete",
			"target", t.Name, "result", res.Kind.String())
		results = append(results, TargetResult{Target: t.Name, Result: res})
	}
	return results
}

// Check runs one cycle for one target. Decision order, first match wins:
//
//  1. fetch failure      → Failed (notify "problem" once per outage)
//  2. maintenance marker → Skipped (no persist, no notify)
//  3. prior error flag   → Recovered (notify info, skip change detection)
//  4. urgent phrase      → UrgentMatch (notify max, every cycle unless
//     DedupUrgent and fingerprint unchanged)
//  5. no prior snapshot  → Bootstrapped (notify info, no diff)
//  6. same fingerprint   → Unchanged (silent, no write)
//  7. otherwise          → Changed (notify elevated with diff summary)
func (e *Engine) Check(ctx context.Context, t Target) CheckResult {
	log := e.logger.With("target", t.Name, "url", t.URL)
	prev := e.loadSnapshot(ctx, t.Name, log)

	raw, err := e.fetch(ctx, t.URL)
	if err != nil {
		return e.failCycle(ctx, t, prev, err, log)
	}

	rawLower := strings.ToLower(string(raw))

	if marker := firstMatch(rawLower, t.MaintenanceMarkers); marker != "" {
		log.Info("maintenance marker present, cycle skipped", "marker", marker)
		return CheckResult{Kind: KindSkipped}
	}

	text := Normalize(string(raw), t.RelevanceKeywords)
	fp := Fingerprint(text)

	if prev != nil && prev.ErrorFlag {
		// The stored text predates the outage; diffing against it would
		// report stale changes. Re-baseline instead.
		e.send(ctx, log, Notification{
			Title:   "✅ " + t.Name + " de nouveau accessible",
			Body:    "La page répond à nouveau, la surveillance reprend.",
			Urgency: UrgencyInfo,
			URL:     t.URL,
		})
		e.save(ctx, t.Name, &Snapshot{Fingerprint: fp, Text: text}, log)
		return CheckResult{Kind: KindRecovered}
	}

	if matched := allMatches(rawLower, t.UrgentPhrases); len(matched) > 0 {
		if !(t.DedupUrgent && prev != nil && prev.Fingerprint == fp) {
			e.send(ctx, log, Notification{
				Title:   "🚨 " + t.Name + " : phrase urgente détectée",
				Body:    "Phrase(s) trouvée(s) : " + strings.Join(matched, ", "),
				Urgency: UrgencyMax,
				URL:     t.URL,
			})
			e.save(ctx, t.Name, &Snapshot{Fingerprint: fp, Text: text}, log)
			return CheckResult{Kind: KindUrgentMatch, MatchedPhrases: matched}
		}
		// Suppression requires prev != nil, so the fall-through below can
		// only land on unchanged or changed, never bootstrap.
		log.Info("urgent phrase still present, duplicate suppressed",
			"phrases", matched)
	}

	if prev == nil {
		e.save(ctx, t.Name, &Snapshot{Fingerprint: fp, Text: text}, log)
		e.send(ctx, log, Notification{
			Title:   "👀 Surveillance démarrée — " + t.Name,
			Body:    "Première vérification réussie, état initial enregistré.",
			Urgency: UrgencyInfo,
			URL:     t.URL,
		})
		return CheckResult{Kind: KindBootstrapped}
	}

	if fp == prev.Fingerprint {
		return CheckResult{Kind: KindUnchanged}
	}

	summary := Diff(prev.Text, text)
	e.send(ctx, log, Notification{
		Title:   "🔔 Changement détecté — " + t.Name,
		Body:    summary,
		Urgency: UrgencyElevated,
		URL:     t.URL,
	})
	e.save(ctx, t.Name, &Snapshot{Fingerprint: fp, Text: text}, log)
	return CheckResult{Kind: KindChanged, Diff: summary}
}

// Heartbeat probes every target to prove liveness. It never consults or
// mutates snapshots and never bootstraps or diffs; it reports per-target
// status, notifies probe failures at problem urgency, and re-asserts the
// urgent-phrase escalation. With no snapshot there is no outage edge to
// track, so a target that stays down notifies on every pass.
func (e *Engine) Heartbeat(ctx context.Context, targets []Target) []HeartbeatStatus {
	statuses := make([]HeartbeatStatus, 0, len(targets))
	for _, t := range targets {
		log := e.logger.With("target", t.Name, "url", t.URL)

		raw, err := e.fetch(ctx, t.URL)
		if err != nil {
			log.Warn("heartbeat probe failed", "error", err)
			e.send(ctx, log, Notification{
				Title:   "⚠️ Erreur de vérification — " + t.Name,
				Body:    "Impossible de vérifier la page : " + err.Error(),
				Urgency: UrgencyProblem,
				URL:     t.URL,
			})
			statuses = append(statuses, HeartbeatStatus{
				Target: t.Name,
				Status: "error: " + err.Error(),
			})
			continue
		}

		status := HeartbeatStatus{Target: t.Name, OK: true, Status: "ok"}
		if matched := allMatches(strings.ToLower(string(raw)), t.UrgentPhrases); len(matched) > 0 {
			status.MatchedPhrases = matched
			e.send(ctx, log, Notification{
				Title:   "🚨 " + t.Name + " : phrase urgente détectée",
				Body:    "Phrase(s) trouvée(s) : " + strings.Join(matched, ", "),
				Urgency: UrgencyMax,
				URL:     t.URL,
			})
		}
		log.Info("heartbeat ok")
		statuses = append(statuses, status)
	}
	return statuses
}

// failCycle handles rule 1. The previous fingerprint and text are carried
// over untouched — never fabricate identity from a failed fetch — and the
// error flag suppresses repeat "problem" notifications until recovery.
func (e *Engine) failCycle(ctx context.Context, t Target, prev *Snapshot, err error, log *slog.Logger) CheckResult {
	log.Warn("fetch failed", "error", err)

	if prev == nil || !prev.ErrorFlag {
		e.send(ctx, log, Notification{
			Title:   "⚠️ Erreur de vérification — " + t.Name,
			Body:    "Impossible de vérifier la page : " + err.Error(),
			Urgency: UrgencyProblem,
			URL:     t.URL,
		})
	}

	snap := &Snapshot{ErrorFlag: true}
	if prev != nil {
		snap.Fingerprint = prev.Fingerprint
		snap.Text = prev.Text
	}
	e.save(ctx, t.Name, snap, log)
	return CheckResult{Kind: KindFailed, ErrSummary: err.Error()}
}

// loadSnapshot fails soft: a store error costs one bootstrap cycle, never
// a wedged target.
func (e *Engine) loadSnapshot(ctx context.Context, name string, log *slog.Logger) *Snapshot {
	snap, err := e.store.Load(ctx, name)
	if err != nil {
		log.Warn("snapshot load failed, treating as absent", "error", err)
		return nil
	}
	return snap
}

func (e *Engine) save(ctx context.Context, name string, snap *Snapshot, log *slog.Logger) {
	if err := e.store.Save(ctx, name, snap); err != nil {
		log.Error("snapshot save failed", "error", err)
	}
}

// send delivers best effort: a notify failure is logged, never escalated
// into a second-order failure of the cycle.
func (e *Engine) send(ctx context.Context, log *slog.Logger, n Notification) {
	if err := e.notify.Notify(ctx, n); err != nil {
		log.Warn("notification failed", "title", n.Title, "error", err)
	}
}

func firstMatch(haystackLower string, needles []string) string {
	for _, n := range needles {
		trimmed := strings.TrimSpace(n)
		if trimmed != "" && strings.Contains(haystackLower, strings.ToLower(trimmed)) {
			return trimmed
		}
	}
	return ""
}

func allMatches(haystackLower string, needles []string) []string {
	var matched []string
	for _, n := range needles {
		trimmed := strings.TrimSpace(n)
		if trimmed != "" && strings.Contains(haystackLower, strings.ToLower(trimmed)) {
			matched = append(matched, trimmed)
		}
	}
	return matched
}
