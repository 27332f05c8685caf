package watch

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// SegmentSeparator joins retained sentence segments after keyword filtering.
const SegmentSeparator = " | "

// stripPolicy removes every tag (script and style bodies included) and
// leaves a space where each tag stood, so adjacent cells and list items
// stay word-separated. StrictPolicy's default skip set also swallows the
// content of title, noscript and a few embed elements; title and noscript
// hold visible words (a status change often lands in the page title
// first), so their content is kept.
var stripPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	p.AllowElementsContent("title", "noscript")
	return p
}()

// Normalize reduces raw markup to comparable text: tags and script/style
// blocks removed, entities decoded, whitespace runs collapsed to a single
// space, surrounding whitespace trimmed.
//
// With non-empty keywords, the text is split into sentence-like segments
// on '.', '!' and '?', and only segments containing at least one keyword
// (case-insensitive substring match) are kept, rejoined with
// SegmentSeparator. No matching segment yields an empty string — a valid
// outcome meaning "no relevant content".
//
// Deterministic and side-effect free.
func Normalize(raw string, keywords []string) string {
	text := html.UnescapeString(stripPolicy.Sanitize(raw))
	text = strings.Join(strings.Fields(text), " ")

	if len(keywords) == 0 {
		return text
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	if len(lowered) == 0 {
		return text
	}

	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var relevant []string
	for _, seg := range segments {
		segLower := strings.ToLower(seg)
		for _, kw := range lowered {
			if strings.Contains(segLower, kw) {
				relevant = append(relevant, strings.TrimSpace(seg))
				break
			}
		}
	}
	return strings.Join(relevant, SegmentSeparator)
}
