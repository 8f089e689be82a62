package skills_test

import (
	"reflect"
	"testing"

	"github.com/certledger/certledger/internal/credential"
	"github.com/certledger/certledger/internal/skills"
)

func creds(eventNames ...string) []credential.Credential {
	out := make([]credential.Credential, 0, len(eventNames))
	for _, n := range eventNames {
		out = append(out, credential.Credential{EventName: n, StudentName: "Priya Nair"})
	}
	return out
}

func TestExtract_SubstringMatch(t *testing.T) {
	g := skills.DefaultGraph()

	got := g.Extract(creds("Python Workshop"))
	if !reflect.DeepEqual(got, []string{"Python"}) {
		t.Errorf("Extract = %v, want [Python]", got)
	}
}

func TestExtract_Aliases(t *testing.T) {
	g := skills.DefaultGraph()

	tests := []struct {
		event string
		want  string
	}{
		{"JS Bootcamp", "JavaScript"},
		{"Intro to CSS Grid", "CSS"},
		{"HTML5 Deep Dive", "HTML"},
		{"Node.js Backend Camp", "JavaScript"}, // ".js" suffix trips the js alias
	}
	for _, tt := range tests {
		got := g.Extract(creds(tt.event))
		found := false
		for _, s := range got {
			if s == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("Extract(%q) = %v, want to contain %q", tt.event, got, tt.want)
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	g := skills.DefaultGraph()

	records := creds("Blockchain Hackathon", "Python Workshop", "React Conf")
	first := g.Extract(records)
	for i := 0; i < 10; i++ {
		if got := g.Extract(records); !reflect.DeepEqual(got, first) {
			t.Fatalf("Extract not deterministic: %v vs %v", got, first)
		}
	}

	// Repetition of records must not change the set.
	doubled := append(append([]credential.Credential{}, records...), records...)
	if got := g.Extract(doubled); !reflect.DeepEqual(got, first) {
		t.Errorf("Extract over repeated records = %v, want %v", got, first)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	g := skills.DefaultGraph()
	if got := g.Extract(nil); len(got) != 0 {
		t.Errorf("Extract(nil) = %v, want empty", got)
	}
}

func TestExtract_CaseInsensitive(t *testing.T) {
	g := skills.DefaultGraph()
	got := g.Extract(creds("MACHINE LEARNING summit"))
	if !reflect.DeepEqual(got, []string{"Machine Learning"}) {
		t.Errorf("Extract = %v, want [Machine Learning]", got)
	}
}
