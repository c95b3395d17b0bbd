package knowledge

import "testing"

func TestLookupKnownIndustry(t *testing.T) {
	entry, known := Lookup("Healthcare")
	if !known {
		t.Fatal("expected healthcare to be a known industry")
	}
	if len(entry.BestPractices) != 5 {
		t.Errorf("expected 5 best practices, got %d", len(entry.BestPractices))
	}
	if entry.BestPractices[0] != "Ensure HIPAA compliance from day one" {
		t.Errorf("unexpected first best practice: %q", entry.BestPractices[0])
	}
	if len(entry.RecommendedTools) != 5 {
		t.Errorf("expected 5 recommended tools, got %d", len(entry.RecommendedTools))
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	for _, industry := range []string{"automotive", "AUTOMOTIVE", "Automotive", "  automotive "} {
		if _, known := Lookup(industry); !known {
			t.Errorf("Lookup(%q) should resolve the curated entry", industry)
		}
	}
}

func TestLookupUnknownIndustryFallsBack(t *testing.T) {
	entry, known := Lookup("Aerospace")
	if known {
		t.Fatal("aerospace should not be a known industry")
	}

	generic := Generic()
	if len(entry.BestPractices) != len(generic.BestPractices) {
		t.Errorf("unknown industry should get generic practices, got %d", len(entry.BestPractices))
	}
	if len(entry.RecommendedTools) != 5 {
		t.Fatalf("expected 5 generic tools, got %d", len(entry.RecommendedTools))
	}
	if entry.RecommendedTools[0] != "Python" || entry.RecommendedTools[4] != "Git" {
		t.Errorf("unexpected generic tool list: %v", entry.RecommendedTools)
	}
}

func TestKnown(t *testing.T) {
	if !Known("Retail") {
		t.Error("retail should be known")
	}
	if Known("Fintech") {
		t.Error("fintech should not be known")
	}
}
