package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"nil", nil, "(none)"},
		{"empty", []string{}, "(none)"},
		{"single", []string{"web1"}, "web1"},
		{"several", []string{"web1", "db", "gpu-box"}, "web1, db, gpu-box"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.items))
		})
	}
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "sensors", Pluralize(0, "sensor", "sensors"))
	assert.Equal(t, "sensor", Pluralize(1, "sensor", "sensors"))
	assert.Equal(t, "sensors", Pluralize(2, "sensor", "sensors"))
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"list", "list", 0},
		{"lsit", "list", 2},
		{"list", "lists", 1},
		{"lists", "list", 1},
		{"list", "List", 1},
		{"kitten", "sitting", 3},
		{"°C", "°F", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"list", "lists", "config", "version", "completion", "help"}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"transposition", "lsit", []string{"list"}},
		{"extra char", "listt", []string{"list", "lists"}},
		{"missing char", "lis", []string{"list", "lists"}},
		{"nothing close", "xyz", nil},
		{"empty input", "", nil},
		{"ignores case", "LIST", []string{"list", "lists"}},
		{"exact", "config", []string{"config"}},
		{"typo", "verison", []string{"version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestSimilar(tt.input, candidates, 3))
		})
	}
}

func TestSuggestSimilar_Limit(t *testing.T) {
	got := SuggestSimilar("lis", []string{"list", "lists", "lit", "lid"}, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"list", "lit"}, got)
}

func TestSuggestSimilar_EmptyCandidates(t *testing.T) {
	assert.Nil(t, SuggestSimilar("list", nil, 3))
	assert.Nil(t, SuggestSimilar("list", []string{}, 3))
}
