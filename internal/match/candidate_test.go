package match

import (
	"slices"
	"testing"
)

func TestRank(t *testing.T) {
	names := []string{"silver_load", "ingest_order", "IngestOrders", "report"}

	ranked := Rank("ingest_orders", names)
	if len(ranked) != len(names) {
		t.Fatalf("expected %d candidates, got %d", len(names), len(ranked))
	}

	if ranked[0].Name != "IngestOrders" || ranked[0].NameScore != 1.0 {
		t.Errorf("expected IngestOrders with score 1.0 first, got %s (%f)", ranked[0].Name, ranked[0].NameScore)
	}

	if ranked[1].Name != "ingest_order" {
		t.Errorf("expected ingest_order second, got %s", ranked[1].Name)
	}
}

func TestRank_Determinism(t *testing.T) {
	names := []string{"b_job", "a_job", "c_job"}

	first := Rank("x_job", names)
	for range 10 {
		again := Rank("x_job", names)
		for i := range first {
			if first[i].Name != again[i].Name {
				t.Fatalf("non-deterministic ranking at %d: %s vs %s", i, first[i].Name, again[i].Name)
			}
		}
	}

	if first[0].Name != "a_job" {
		t.Errorf("expected ties broken by name, got %s first", first[0].Name)
	}
}

func TestClosest(t *testing.T) {
	names := []string{"run.py", "runs.py", "unrelated_module.py", "ruin.py"}

	got := Closest("run.py", names, 2, 0.6)
	if !slices.Equal(got, []string{"run.py", "ruin.py"}) {
		t.Errorf("Closest = %v", got)
	}

	if got := Closest("zzz", names, 3, 0.9); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

func TestCandidateList_Top(t *testing.T) {
	list := CandidateList{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	if got := list.Top(2); len(got) != 2 {
		t.Errorf("Top(2) returned %d", len(got))
	}

	if got := list.Top(10); len(got) != 3 {
		t.Errorf("Top(10) returned %d", len(got))
	}
}

func TestCandidateList_IsAmbiguous(t *testing.T) {
	tests := []struct {
		name      string
		list      CandidateList
		threshold float64
		expected  bool
	}{
		{"empty", CandidateList{}, 0.1, false},
		{"single", CandidateList{{NameScore: 0.9}}, 0.1, false},
		{"close", CandidateList{{NameScore: 0.9}, {NameScore: 0.85}}, 0.1, true},
		{"clear gap", CandidateList{{NameScore: 0.9}, {NameScore: 0.5}}, 0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.list.IsAmbiguous(tt.threshold); got != tt.expected {
				t.Errorf("IsAmbiguous = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCandidateList_HighConfidence(t *testing.T) {
	tests := []struct {
		name     string
		list     CandidateList
		expected string
	}{
		{"empty", CandidateList{}, ""},
		{"below min score", CandidateList{{Name: "a", NameScore: 0.5}}, ""},
		{"ambiguous", CandidateList{{Name: "a", NameScore: 0.9}, {Name: "b", NameScore: 0.88}}, ""},
		{"clear winner", CandidateList{{Name: "a", NameScore: 0.95}, {Name: "b", NameScore: 0.6}}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := tt.list.HighConfidence(0.8, 0.1)

			got := ""
			if best != nil {
				got = best.Name
			}

			if got != tt.expected {
				t.Errorf("HighConfidence = %q, want %q", got, tt.expected)
			}
		})
	}
}
