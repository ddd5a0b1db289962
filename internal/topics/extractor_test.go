package topics

import (
	"reflect"
	"testing"
)

func TestExtract_KeywordLine(t *testing.T) {
	t.Parallel()

	got := Extract("This topic is related to: Mathematics, Physics.")
	want := []string{"Mathematics", "Physics"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_MultiWordAndEndOfLine(t *testing.T) {
	t.Parallel()

	got := Extract("See also: Quantum Mechanics, General Relativity")
	want := []string{"Quantum Mechanics", "General Relativity"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_OnlyCueLinesScanned(t *testing.T) {
	t.Parallel()

	text := "Napoleon ruled France.\nTopics: History, Warfare.\nEinstein was elsewhere."
	got := Extract(text)
	want := []string{"History", "Warfare"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_FallbackCapitalizedWords(t *testing.T) {
	t.Parallel()

	got := Extract("Paris is the capital of France and home to the Louvre.")
	if len(got) == 0 || len(got) > MaxTopics {
		t.Fatalf("fallback yielded %d entries", len(got))
	}
	for _, topic := range got {
		if len(topic) <= 2 {
			t.Errorf("topic %q shorter than 3 chars", topic)
		}
	}
	// Sentence-initial words are accepted false positives of the fallback.
	if got[0] != "Paris" {
		t.Errorf("first fallback topic = %q, want Paris", got[0])
	}
}

func TestExtract_CapAtFive(t *testing.T) {
	t.Parallel()

	got := Extract("Concepts: Alpha, Beta, Gamma, Delta, Epsilon, Zeta, Eta.")
	if len(got) != MaxTopics {
		t.Fatalf("len = %d, want %d", len(got), MaxTopics)
	}
	if got[4] != "Epsilon" {
		t.Errorf("fifth topic = %q, want Epsilon", got[4])
	}
}

func TestExtract_ShortCandidatesFiltered(t *testing.T) {
	t.Parallel()

	got := Extract("Related to: Go, AI, Compilers.")
	want := []string{"Compilers"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_NoDedup(t *testing.T) {
	t.Parallel()

	got := Extract("Similar to: Graphs, Graphs.")
	want := []string{"Graphs", "Graphs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	text := "Newton discovered gravity. See also: Calculus, Optics."
	first := Extract(text)
	for i := 0; i < 10; i++ {
		if again := Extract(text); !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, again, first)
		}
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := Extract(""); len(got) != 0 {
		t.Errorf("Extract(\"\") = %v", got)
	}
	if got := Extract("nothing capitalized here at all"); len(got) != 0 {
		t.Errorf("lowercase text should yield nothing, got %v", got)
	}
}
