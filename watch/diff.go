package watch

import (
	"sort"
	"strings"
)

// StructuralChangeNotice is returned when fingerprints differ but the word
// sets are identical (whitespace or ordering change only).
const StructuralChangeNotice = "Changement de structure/ordre détecté"

// maxDiffWords caps each of the added/removed samples in a summary. The
// diff is a sampling aid for a human, not an exhaustive comparison.
const maxDiffWords = 10

// Diff summarizes what changed between two normalized texts as
// case-insensitive word sets. Up to maxDiffWords added and removed words
// are listed, sorted for a deterministic sample. Pure function.
func Diff(oldText, newText string) string {
	oldWords := wordSet(oldText)
	newWords := wordSet(newText)

	added := sample(subtract(newWords, oldWords))
	removed := sample(subtract(oldWords, newWords))

	var parts []string
	if len(added) > 0 {
		parts = append(parts, "Nouveaux mots: "+strings.Join(added, ", "))
	}
	if len(removed) > 0 {
		parts = append(parts, "Mots retirés: "+strings.Join(removed, ", "))
	}
	if len(parts) == 0 {
		return StructuralChangeNotice
	}
	return strings.Join(parts, "\n")
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

func subtract(a, b map[string]bool) []string {
	var out []string
	for w := range a {
		if !b[w] {
			out = append(out, w)
		}
	}
	return out
}

func sample(words []string) []string {
	sort.Strings(words)
	if len(words) > maxDiffWords {
		words = words[:maxDiffWords]
	}
	return words
}
