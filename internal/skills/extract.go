package skills

import (
	"strings"

	"github.com/certledger/certledger/internal/credential"
)

// Extract derives the set of skill tags a learner demonstrably holds from
// their credential history. Each credential's event name and student name
// are lowercased and checked for substring mentions of every tag in the
// vocabulary. The common web abbreviations are matched independently since
// the canonical tags do not always match how events are titled
// ("JS Bootcamp" should still count as JavaScript).
//
// The result is a set; the returned slice is ordered by graph declaration
// order so repeated calls over the same records are identical.
func (g *Graph) Extract(records []credential.Credential) []string {
	found := make(map[string]bool)

	for _, rec := range records {
		text := strings.ToLower(rec.EventName + " " + rec.StudentName)
		for _, tag := range g.order {
			if matchesText(text, tag) {
				found[tag] = true
			}
		}
		if strings.Contains(text, "html") {
			found["HTML"] = true
		}
		if strings.Contains(text, "css") {
			found["CSS"] = true
		}
		if strings.Contains(text, "js") || strings.Contains(text, "javascript") {
			found["JavaScript"] = true
		}
	}

	out := make([]string, 0, len(found))
	for _, tag := range g.order {
		if found[tag] {
			out = append(out, tag)
		}
	}
	return out
}
