package state

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Melyssali/swap2026/watch"
)

// decodeSnapshot parses a stored blob. Formats, newest first:
//
//   - JSON object {"hash", "text", "error"} — current.
//   - JSON string — an earlier format holding only the fingerprint.
//   - bare unquoted token — the original plain-text state files.
//
// Anything else is malformed; the caller treats that as absent.
func decodeSnapshot(blob string) (*watch.Snapshot, error) {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return nil, errors.New("empty blob")
	}

	if strings.HasPrefix(trimmed, "{") {
		var snap watch.Snapshot
		if err := json.Unmarshal([]byte(trimmed), &snap); err != nil {
			return nil, err
		}
		// Shape check: a valid record carries a fingerprint unless the
		// target has never been fetched successfully (error flag set).
		if snap.Fingerprint == "" && !snap.ErrorFlag {
			return nil, errors.New("snapshot missing fingerprint")
		}
		return &snap, nil
	}

	var legacy string
	if err := json.Unmarshal([]byte(trimmed), &legacy); err == nil && legacy != "" {
		return &watch.Snapshot{Fingerprint: legacy}, nil
	}

	// Bare token with no JSON structure at all: the whole blob is the
	// fingerprint.
	if !strings.ContainsAny(trimmed, "{}[]\" \t\n") {
		return &watch.Snapshot{Fingerprint: trimmed}, nil
	}

	return nil, errors.New("unrecognized snapshot format")
}
