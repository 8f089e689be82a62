// Package skills defines the skill tag vocabulary, the static skill graph,
// and the extraction/prediction logic built on top of them.
package skills

import "strings"

// Graph maps each skill tag to its typical successor skills. It is built
// once at process start and never mutated afterwards, so concurrent reads
// need no locking.
type Graph struct {
	order      []string            // declaration order of skill tags
	successors map[string][]string // tag -> successor tags
}

// defaultSeedSkills is returned by PredictNext when no successor can be
// derived from the learner's current skills.
var defaultSeedSkills = []string{"JavaScript", "Python", "Blockchain"}

// NewGraph builds a graph from an ordered list of edges. Declaration order
// is preserved so that prediction output is deterministic.
func NewGraph(edges []Edge) *Graph {
	g := &Graph{successors: make(map[string][]string, len(edges))}
	for _, e := range edges {
		if _, dup := g.successors[e.Skill]; dup {
			continue
		}
		g.order = append(g.order, e.Skill)
		g.successors[e.Skill] = e.Next
	}
	return g
}

// Edge declares one skill and its successor list.
type Edge struct {
	Skill string   `yaml:"skill"`
	Next  []string `yaml:"next"`
}

// DefaultGraph returns the built-in skill graph.
func DefaultGraph() *Graph {
	return NewGraph([]Edge{
		{Skill: "HTML", Next: []string{"CSS", "JavaScript", "Web Development"}},
		{Skill: "CSS", Next: []string{"JavaScript", "Tailwind", "Design"}},
		{Skill: "JavaScript", Next: []string{"React", "Node.js", "TypeScript", "Vue.js", "Web Development"}},
		{Skill: "Python", Next: []string{"Django", "Flask", "Machine Learning", "Data Science", "AI"}},
		{Skill: "React", Next: []string{"Redux", "Next.js", "GraphQL", "Frontend Architecture"}},
		{Skill: "Node.js", Next: []string{"Express", "MongoDB", "PostgreSQL", "Backend Architecture"}},
		{Skill: "Machine Learning", Next: []string{"Deep Learning", "Computer Vision", "NLP", "TensorFlow"}},
		{Skill: "Data Science", Next: []string{"Pandas", "NumPy", "Matplotlib", "Big Data"}},
		{Skill: "Blockchain", Next: []string{"Smart Contracts", "Solidity", "Ethereum", "Web3", "DeFi"}},
		{Skill: "Solidity", Next: []string{"Hardhat", "Security Auditing", "DApps"}},
		{Skill: "Web Development", Next: []string{"Frontend", "Backend", "Full Stack"}},
	})
}

// Tags returns the vocabulary in declaration order.
func (g *Graph) Tags() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Successors returns the successor list for a tag. A missing tag yields an
// empty list, not an error.
func (g *Graph) Successors(tag string) []string {
	next := g.successors[tag]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// PredictNext returns the skills a learner should pick up next: the union
// of all successors of the current skills, minus the skills already held.
// Output order is deterministic: current skills in the order given, each
// skill's successors in graph declaration order. When nothing can be
// derived, a fixed seed list is returned so the caller always has
// something to recommend.
func (g *Graph) PredictNext(current []string) []string {
	have := make(map[string]bool, len(current))
	for _, s := range current {
		have[s] = true
	}

	var next []string
	seen := make(map[string]bool)
	for _, s := range current {
		for _, succ := range g.successors[s] {
			if have[succ] || seen[succ] {
				continue
			}
			seen[succ] = true
			next = append(next, succ)
		}
	}

	if len(next) == 0 {
		out := make([]string, len(defaultSeedSkills))
		copy(out, defaultSeedSkills)
		return out
	}
	return next
}

// matchesText reports whether the lowercased text mentions the tag.
func matchesText(text, tag string) bool {
	return strings.Contains(text, strings.ToLower(tag))
}
