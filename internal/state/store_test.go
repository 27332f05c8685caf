package state

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Melyssali/swap2026/dbopen"
	"github.com/Melyssali/swap2026/watch"
	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return New(db, cfg, nil)
}

func TestStore_RoundTrip(t *testing.T) {
	// WHAT: A saved snapshot loads back with fingerprint, text and error
	// flag intact.
	s := newTestStore(t, Config{})
	ctx := context.Background()

	in := &watch.Snapshot{Fingerprint: "abc123", Text: "Status: Open", ErrorFlag: true}
	if err := s.Save(ctx, "iec", in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := s.Load(ctx, "iec")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil || *out != *in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestStore_AbsentTarget(t *testing.T) {
	// WHAT: An unknown target loads as (nil, nil), the bootstrap signal.
	s := newTestStore(t, Config{})

	snap, err := s.Load(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Errorf("got %+v, want nil", snap)
	}
}

func TestStore_OverwriteKeepsOneRecordPerTarget(t *testing.T) {
	// WHAT: Saving twice for the same target leaves only the latest state.
	s := newTestStore(t, Config{})
	ctx := context.Background()

	if err := s.Save(ctx, "iec", &watch.Snapshot{Fingerprint: "old", Text: "a"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "iec", &watch.Snapshot{Fingerprint: "new", Text: "b"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	snap, err := s.Load(ctx, "iec")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Fingerprint != "new" || snap.Text != "b" {
		t.Errorf("got %+v", snap)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestStore_TargetsAreIndependent(t *testing.T) {
	// WHAT: Snapshots are keyed per target name.
	s := newTestStore(t, Config{})
	ctx := context.Background()

	s.Save(ctx, "a", &watch.Snapshot{Fingerprint: "fa"})
	s.Save(ctx, "b", &watch.Snapshot{Fingerprint: "fb"})

	snap, _ := s.Load(ctx, "a")
	if snap == nil || snap.Fingerprint != "fa" {
		t.Errorf("a = %+v", snap)
	}
	snap, _ = s.Load(ctx, "b")
	if snap == nil || snap.Fingerprint != "fb" {
		t.Errorf("b = %+v", snap)
	}
}

func TestStore_TruncatesLongText(t *testing.T) {
	// WHAT: Persisted text is bounded at MaxTextLen runes, without
	// splitting a multibyte character.
	s := newTestStore(t, Config{MaxTextLen: 10})
	ctx := context.Background()

	s.Save(ctx, "iec", &watch.Snapshot{Fingerprint: "f", Text: strings.Repeat("é", 50)})
	snap, err := s.Load(ctx, "iec")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := utf8.RuneCountInString(snap.Text); n != 10 {
		t.Errorf("text length = %d runes, want 10", n)
	}
	if !utf8.ValidString(snap.Text) {
		t.Error("text is not valid UTF-8")
	}
}

func TestStore_CorruptBlobDegradesToAbsent(t *testing.T) {
	// WHAT: An undecodable blob loads as (nil, nil), not an error.
	// WHY: One bad write costs a re-bootstrap, never a wedged target.
	s := newTestStore(t, Config{})
	ctx := context.Background()

	_, err := s.db.Exec(
		`INSERT INTO snapshots (target, blob, updated_at) VALUES (?, ?, 0)`,
		"iec", `{"hash": truncated`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	snap, err := s.Load(ctx, "iec")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Errorf("got %+v, want nil", snap)
	}
}

func TestStore_ReadsLegacyRecords(t *testing.T) {
	// WHAT: Records written by earlier deployments still load: the JSON
	// object with hash/text fields, a JSON-quoted fingerprint, and a bare
	// fingerprint string.
	cases := []struct {
		name string
		blob string
		want watch.Snapshot
	}{
		{
			"json object",
			`{"hash":"abc123","text":"Status: Open"}`,
			watch.Snapshot{Fingerprint: "abc123", Text: "Status: Open"},
		},
		{
			"json object with error flag",
			`{"hash":"abc123","text":"old","error":true}`,
			watch.Snapshot{Fingerprint: "abc123", Text: "old", ErrorFlag: true},
		},
		{
			"error flag without fingerprint",
			`{"hash":"","text":"","error":true}`,
			watch.Snapshot{ErrorFlag: true},
		},
		{
			"quoted fingerprint",
			`"d41d8cd98f00b204e9800998ecf8427e"`,
			watch.Snapshot{Fingerprint: "d41d8cd98f00b204e9800998ecf8427e"},
		},
		{
			"bare fingerprint",
			`d41d8cd98f00b204e9800998ecf8427e`,
			watch.Snapshot{Fingerprint: "d41d8cd98f00b204e9800998ecf8427e"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newTestStore(t, Config{})
			_, err := s.db.Exec(
				`INSERT INTO snapshots (target, blob, updated_at) VALUES (?, ?, 0)`,
				"iec", c.blob)
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
			snap, err := s.Load(context.Background(), "iec")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if snap == nil || *snap != c.want {
				t.Errorf("got %+v, want %+v", snap, c.want)
			}
		})
	}
}

func TestDecodeSnapshot_Rejections(t *testing.T) {
	// WHAT: Blobs that carry no usable state are rejected so Load can
	// treat them as absent.
	cases := []struct {
		name string
		blob string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"truncated json", `{"hash":"abc`},
		{"object without state", `{"text":"only text"}`},
		{"json array", `["abc"]`},
		{"free text", `not a fingerprint at all`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if snap, err := decodeSnapshot(c.blob); err == nil {
				t.Errorf("decoded %+v, want error", snap)
			}
		})
	}
}
