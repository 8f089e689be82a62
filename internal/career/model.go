// Package career predicts long-term career paths from a learner's
// credential history using a TF-IDF corpus of career keyword profiles.
package career

import (
	"math"
	"sort"
	"strings"

	"github.com/certledger/certledger/internal/credential"
)

// ScoreScale converts raw cosine similarity into a displayed completion
// percentage. Raw TF-IDF cosine scores over short keyword documents are
// small, so they are scaled up before clamping to 100. This is a
// presentation parameter, not a semantic guarantee: only the clamp and the
// descending sort order are load-bearing.
const ScoreScale = 2.5

// maxPredictions is how many ranked career paths Predict returns.
const maxPredictions = 3

// Profile is one career path and its representative keyword document.
type Profile struct {
	Name     string `yaml:"name"`
	Keywords string `yaml:"keywords"`
}

// DefaultProfiles returns the built-in career corpus.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "Full-Stack Developer", Keywords: "html css javascript react nodejs express mongodb api frontend backend web"},
		{Name: "Data Scientist", Keywords: "python data analysis pandas numpy matplotlib machine learning ai statistics visualization sql"},
		{Name: "Blockchain Engineer", Keywords: "blockchain solidity smart contracts ethereum web3 crypto security dapps consensus"},
		{Name: "DevOps Engineer", Keywords: "docker kubernetes aws cloud ci/cd linux automation scripting security networking"},
		{Name: "Mobile Developer", Keywords: "react native flutter android ios swift kotlin mobile app development ui/ux"},
	}
}

// Prediction is one ranked career path.
type Prediction struct {
	Path       string `json:"path"`
	Completion int    `json:"completion"` // 0-100
	Matches    int    `json:"matches"`    // distinct keyword overlaps
}

// Model holds the per-profile TF-IDF vectors, computed once at startup.
// It is read-only after construction and safe for concurrent use.
type Model struct {
	profiles []Profile
	vectors  []map[string]float64
}

// NewModel builds the career vector model over the given profiles.
func NewModel(profiles []Profile) *Model {
	docs := make([]string, len(profiles))
	for i, p := range profiles {
		docs[i] = p.Keywords
	}
	ix := newIndex(docs)

	m := &Model{
		profiles: profiles,
		vectors:  make([]map[string]float64, len(profiles)),
	}
	for i := range profiles {
		m.vectors[i] = ix.vector(i)
	}
	return m
}

// Predict ranks career paths by similarity between the learner's credential
// history and each career profile. A fresh index including the student
// document is built per call so the student's vocabulary participates in
// the IDF statistics; the index is request-local, so concurrent calls do
// not interfere.
func (m *Model) Predict(history []credential.Credential) []Prediction {
	if len(history) == 0 {
		return m.defaultPredictions()
	}

	var parts []string
	for _, c := range history {
		parts = append(parts, strings.ToLower(c.EventName+" "+c.StudentName))
	}
	studentDoc := strings.Join(parts, " ")

	docs := make([]string, 0, len(m.profiles)+1)
	for _, p := range m.profiles {
		docs = append(docs, p.Keywords)
	}
	docs = append(docs, studentDoc)
	studentVec := newIndex(docs).vector(len(m.profiles))

	predictions := make([]Prediction, 0, len(m.profiles))
	for i, p := range m.profiles {
		score := cosine(studentVec, m.vectors[i])

		pct := int(math.Round(score * 100 * ScoreScale))
		if pct > 100 {
			pct = 100
		}

		predictions = append(predictions, Prediction{
			Path:       p.Name,
			Completion: pct,
			Matches:    matchingKeywords(studentDoc, p.Keywords),
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Completion > predictions[j].Completion
	})
	if len(predictions) > maxPredictions {
		predictions = predictions[:maxPredictions]
	}
	return predictions
}

// matchingKeywords counts distinct student tokens that appear in the
// career keyword document.
func matchingKeywords(studentDoc, careerDoc string) int {
	careerTokens := make(map[string]bool)
	for _, tok := range tokenize(careerDoc) {
		careerTokens[tok] = true
	}

	seen := make(map[string]bool)
	count := 0
	for _, tok := range tokenize(studentDoc) {
		if careerTokens[tok] && !seen[tok] {
			seen[tok] = true
			count++
		}
	}
	return count
}

func (m *Model) defaultPredictions() []Prediction {
	return []Prediction{
		{Path: "Full-Stack Developer", Completion: 0},
		{Path: "Blockchain Engineer", Completion: 0},
		{Path: "Data Scientist", Completion: 0},
	}
}
