// Package recommend produces personalized learning recommendations from a
// learner's credential history: current skills, a skill level, ranked next
// actions, and long-term career path predictions.
package recommend

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/certledger/certledger/internal/career"
	"github.com/certledger/certledger/internal/catalog"
	"github.com/certledger/certledger/internal/credential"
	"github.com/certledger/certledger/internal/skills"
)

const (
	quizScore  = 0.8
	eventScore = 0.9

	// itemsPerSource caps quiz and event candidates before ranking.
	itemsPerSource = 3
	// maxRecommendations caps the final ranked list.
	maxRecommendations = 5
)

// Item is one actionable recommendation.
type Item struct {
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Reason      string     `json:"reason"`
	ID          string     `json:"id"`
	Score       float64    `json:"score"`
}

// Response is the full recommendation payload for a learner.
type Response struct {
	CurrentSkills   []string            `json:"currentSkills"`
	Level           string              `json:"level"`
	Recommendations []Item              `json:"recommendations"`
	CareerPaths     []career.Prediction `json:"careerPaths"`
}

// Level maps a credential count to a skill level.
func Level(credentialCount int) string {
	switch {
	case credentialCount >= 15:
		return "Expert"
	case credentialCount >= 8:
		return "Advanced"
	case credentialCount >= 3:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// EngineConfig holds dependencies for the recommendation engine.
type EngineConfig struct {
	Credentials credential.Store
	Catalog     catalog.Store
	Graph       *skills.Graph
	Careers     *career.Model
	Cache       *Cache // optional
}

// Engine assembles recommendations from the skill graph, the career model
// and the catalog.
type Engine struct {
	credentials credential.Store
	catalog     catalog.Store
	graph       *skills.Graph
	careers     *career.Model
	cache       *Cache
}

// NewEngine creates a recommendation engine. Graph and Careers fall back
// to the built-in taxonomy when unset.
func NewEngine(cfg EngineConfig) *Engine {
	graph := cfg.Graph
	if graph == nil {
		graph = skills.DefaultGraph()
	}
	careers := cfg.Careers
	if careers == nil {
		careers = career.NewModel(career.DefaultProfiles())
	}
	return &Engine{
		credentials: cfg.Credentials,
		catalog:     cfg.Catalog,
		graph:       graph,
		careers:     careers,
		cache:       cfg.Cache,
	}
}

// GetRecommendations builds the recommendation payload for a learner.
// Any pipeline failure degrades to the safe beginner response rather than
// an error.
func (e *Engine) GetRecommendations(ctx context.Context, studentEmail string) (*Response, error) {
	email := strings.ToLower(strings.TrimSpace(studentEmail))

	if cached, ok := e.cache.Get(ctx, email); ok {
		return cached, nil
	}

	history, err := e.credentials.FindByLearner(ctx, email)
	if err != nil {
		slog.Error("failed to load credential history, serving beginner defaults",
			"email", email,
			"error", err,
		)
		return beginnerResponse(), nil
	}
	if len(history) == 0 {
		return beginnerResponse(), nil
	}

	currentSkills := e.graph.Extract(history)
	level := Level(len(history))
	nextSkills := e.graph.PredictNext(currentSkills)
	careerPaths := e.careers.Predict(history)

	items := e.buildItems(ctx, nextSkills)
	items = rank(items)

	resp := &Response{
		CurrentSkills:   currentSkills,
		Level:           level,
		Recommendations: items,
		CareerPaths:     careerPaths,
	}
	e.cache.Set(ctx, email, resp)

	slog.Debug("recommendations built",
		"email", email,
		"level", level,
		"skills", len(currentSkills),
		"items", len(items),
	)
	return resp, nil
}

// buildItems gathers quiz and event candidates that match the predicted
// next skills. Catalog failures degrade to fewer items, not an error.
func (e *Engine) buildItems(ctx context.Context, nextSkills []string) []Item {
	items := []Item{}
	if len(nextSkills) == 0 {
		return items
	}

	quizzes, err := e.catalog.FindActiveQuizzesMatching(ctx, nextSkills, itemsPerSource)
	if err != nil {
		slog.Warn("quiz lookup failed", "error", err)
	}
	for _, q := range quizzes {
		items = append(items, Item{
			Type:        "quiz",
			Title:       q.Topic,
			Description: "Assess your " + q.Topic + " skills",
			Difficulty:  "Adaptive",
			Reason:      "Recommended next step",
			ID:          q.ID,
			Score:       quizScore,
		})
	}

	events, err := e.catalog.FindUpcomingEventsMatching(ctx, nextSkills, itemsPerSource)
	if err != nil {
		slog.Warn("event lookup failed", "error", err)
	}
	for _, ev := range events {
		description := ev.Description
		if description == "" {
			description = "Upcoming Workshop"
		}
		date := ev.Date
		items = append(items, Item{
			Type:        "event",
			Title:       ev.Name,
			Description: description,
			Date:        &date,
			Reason:      "Live learning session",
			ID:          ev.ID,
			Score:       eventScore,
		})
	}
	return items
}

// rank orders items by score descending, preserving insertion order within
// a score, and truncates to the final list size.
func rank(items []Item) []Item {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if len(items) > maxRecommendations {
		items = items[:maxRecommendations]
	}
	return items
}

// beginnerResponse is the safe default for learners with no history and
// for pipeline failures.
func beginnerResponse() *Response {
	return &Response{
		CurrentSkills:   []string{},
		Level:           "Beginner",
		Recommendations: []Item{},
		CareerPaths: []career.Prediction{
			{Path: "Full-Stack Developer", Completion: 0},
			{Path: "Blockchain Engineer", Completion: 0},
		},
	}
}
