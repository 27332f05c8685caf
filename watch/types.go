// Package watch implements the check-cycle engine for monitored pages.
//
// It normalizes fetched markup into comparable text, fingerprints it,
// compares against the last persisted snapshot, and decides whether and
// how urgently to notify the operator. Fetching, notification delivery
// and persistence are collaborators injected at construction.
package watch

import "context"

// Target is one monitored page. Configuration is immutable after load.
type Target struct {
	// Name is the stable identifier, also the persistence key.
	Name string `yaml:"name"`
	// URL is the page to fetch.
	URL string `yaml:"url"`
	// RelevanceKeywords, when set, restrict normalization to sentence
	// segments containing at least one keyword (case-insensitive).
	RelevanceKeywords []string `yaml:"relevance_keywords"`
	// UrgentPhrases trigger maximum-urgency notification when present
	// anywhere in the raw (pre-normalization) content.
	UrgentPhrases []string `yaml:"urgent_phrases"`
	// MaintenanceMarkers skip the whole cycle when present in the raw
	// content (the page is in a known transient state).
	MaintenanceMarkers []string `yaml:"maintenance_markers"`
	// DedupUrgent suppresses repeat urgent notifications while the
	// content fingerprint is unchanged. Default false: the urgent
	// condition is re-asserted every cycle it remains true.
	DedupUrgent bool `yaml:"dedup_urgent"`
}

// Snapshot is the persisted state for a Target. The JSON field names match
// the historical state-file format so old records stay readable.
type Snapshot struct {
	// Fingerprint is the hex digest of the normalized text. Empty only
	// when the target has never been fetched successfully.
	Fingerprint string `json:"hash"`
	// Text is the normalized text, truncated by the store before save.
	Text string `json:"text"`
	// ErrorFlag records that the last check failed.
	ErrorFlag bool `json:"error,omitempty"`
}

// Kind classifies the outcome of one check cycle.
type Kind int

const (
	// KindBootstrapped is the first successful check of a never-seen target.
	KindBootstrapped Kind = iota
	// KindUnchanged means the fingerprint matched the stored one.
	KindUnchanged
	// KindChanged means the content fingerprint differs.
	KindChanged
	// KindUrgentMatch means an urgent phrase is present in the raw content.
	KindUrgentMatch
	// KindRecovered means the fetch succeeded after a recorded failure.
	KindRecovered
	// KindFailed means the fetch failed.
	KindFailed
	// KindSkipped means a maintenance marker was present and the cycle
	// was abandoned without persisting or notifying.
	KindSkipped
)

func (k Kind) String() string {
	switch k {
	case KindBootstrapped:
		return "bootstrapped"
	case KindUnchanged:
		return "unchanged"
	case KindChanged:
		return "changed"
	case KindUrgentMatch:
		return "urgent_match"
	case KindRecovered:
		return "recovered"
	case KindFailed:
		return "failed"
	case KindSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// CheckResult is the transient outcome of one check cycle. It is never
// persisted; only its effect on the Snapshot is.
type CheckResult struct {
	Kind Kind
	// Diff is the human-readable change summary (KindChanged only).
	Diff string
	// MatchedPhrases are the urgent phrases found (KindUrgentMatch only).
	MatchedPhrases []string
	// ErrSummary describes the fetch failure (KindFailed only).
	ErrSummary string
}

// TargetResult pairs a target name with its check outcome.
type TargetResult struct {
	Target string
	Result CheckResult
}

// HeartbeatStatus is the per-target outcome of a heartbeat pass.
type HeartbeatStatus struct {
	Target string
	OK     bool
	// Status is "ok" or an error description.
	Status string
	// MatchedPhrases are urgent phrases found during the probe.
	MatchedPhrases []string
}

// FetchFunc retrieves the raw body of a URL. All transport failures
// (non-2xx, timeout, DNS) collapse into a single error kind as far as the
// engine is concerned.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// SnapshotStore persists per-target snapshots. Load returns (nil, nil)
// when no usable snapshot exists; a malformed stored record must degrade
// to absent rather than error.
type SnapshotStore interface {
	Load(ctx context.Context, target string) (*Snapshot, error)
	Save(ctx context.Context, target string, snap *Snapshot) error
}

// Urgency grades a notification.
type Urgency int

const (
	// UrgencyInfo announces routine lifecycle events (bootstrap, recovery).
	UrgencyInfo Urgency = iota
	// UrgencyElevated signals a detected content change.
	UrgencyElevated
	// UrgencyProblem signals a monitoring failure.
	UrgencyProblem
	// UrgencyMax signals an urgent-phrase match and demands operator action.
	UrgencyMax
)

// Notification is one message for the operator.
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	// URL, when set, lets the operator open the monitored page directly.
	URL string
}

// Notifier delivers notifications. Delivery is best effort: callers log
// failures and never let them affect the check cycle.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
