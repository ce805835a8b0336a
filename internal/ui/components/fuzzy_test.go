// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"
)

// =============================================================================
// FUZZY MATCHING TESTS
// =============================================================================

func TestFuzzyMatchBasic(t *testing.T) {
	tests := []struct {
		query   string
		target  string
		matched bool
	}{
		{"", "anything", true},
		{"lm", "llama3", true},
		{"mst", "mistral", true},
		{"xyz", "llama3", false},
		{"llama3x", "llama3", false},
		{"LLAMA", "llama3", true}, // case-insensitive
	}

	for _, tc := range tests {
		_, matched := FuzzyMatch(tc.query, tc.target)
		if matched != tc.matched {
			t.Errorf("FuzzyMatch(%q, %q) matched = %v, want %v", tc.query, tc.target, matched, tc.matched)
		}
	}
}

func TestFuzzyMatchScoring(t *testing.T) {
	// Consecutive match at the start should beat a scattered match.
	consecutive := FuzzyMatchScore("lla", "llama3")
	scattered := FuzzyMatchScore("lla", "local-alpha")

	if consecutive <= scattered {
		t.Errorf("consecutive score %d should beat scattered score %d", consecutive, scattered)
	}
}

func TestFuzzyFilterSortsByScore(t *testing.T) {
	targets := []string{"research-assistant", "casual", "coder"}

	matches := FuzzyFilter("ca", targets)
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if matches[0].Target != "casual" {
		t.Errorf("best match = %q, want %q", matches[0].Target, "casual")
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted by score at index %d", i)
		}
	}
}

func TestFuzzyFilterExcludesNonMatches(t *testing.T) {
	matches := FuzzyFilter("zzz", []string{"casual", "coder"})
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestHighlightMatchPositions(t *testing.T) {
	positions := HighlightMatch("lm", "llama3")
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0] != 0 {
		t.Errorf("first position = %d, want 0", positions[0])
	}
}
