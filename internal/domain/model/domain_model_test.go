package model

import (
	"strings"
	"testing"
)

func TestParseProvider(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Provider
		ok   bool
	}{
		{"openai", ProviderOpenAI, true},
		{" OpenAI ", ProviderOpenAI, true},
		{"gemini", ProviderGemini, true},
		{"GEMINI", ProviderGemini, true},
		{"anthropic", "", false},
		{"", "", false},
		{"openai2", "", false},
	}
	for _, c := range cases {
		got, ok := ParseProvider(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseProvider(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestValidateAPIKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		provider Provider
		key      string
		want     bool
	}{
		{ProviderOpenAI, "sk-" + strings.Repeat("x", 25), true},
		{ProviderOpenAI, "sk-short", false},
		{ProviderOpenAI, "nosk-prefix-but-long-enough-string", false},
		{ProviderOpenAI, "", false},
		{ProviderOpenAI, "   ", false},
		{ProviderGemini, strings.Repeat("x", 25), true},
		{ProviderGemini, "short", false},
		{ProviderGemini, "\t  \n", false},
		{Provider("anthropic"), strings.Repeat("x", 40), false},
		{Provider(""), strings.Repeat("x", 40), false},
	}
	for _, c := range cases {
		if got := ValidateAPIKey(c.provider, c.key); got != c.want {
			t.Errorf("ValidateAPIKey(%q, %q) = %v, want %v", c.provider, c.key, got, c.want)
		}
	}
}

func TestChatSessionAppendOnly(t *testing.T) {
	t.Parallel()

	s := NewChatSession("sess-1", "node-1")
	if s.Status != ChatSessionActive {
		t.Fatalf("new session status = %q", s.Status)
	}

	first := s.AddMessage("user", "hello", nil)
	second := s.AddMessage("assistant", "hi there", []string{"Greetings"})

	if len(s.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(s.Messages))
	}
	if first.ID == "" || second.ID == "" {
		t.Fatal("message IDs must be assigned")
	}
	// ULIDs sort by creation order
	if !(first.ID < second.ID) {
		t.Errorf("message IDs not monotonic: %q then %q", first.ID, second.ID)
	}
	if s.Messages[1].RelatedTopics[0] != "Greetings" {
		t.Errorf("topics not carried: %v", s.Messages[1].RelatedTopics)
	}
	if s.UpdatedAt.Before(s.CreatedAt) {
		t.Error("UpdatedAt must advance with appends")
	}
}

func TestChatSessionMessageIDsOrderedWithinMillisecond(t *testing.T) {
	t.Parallel()

	// Back-to-back appends routinely share a ULID timestamp; ordering must
	// then come from the monotonic entropy, not from random bytes.
	s := NewChatSession("sess-ord", "")
	prev := ""
	for i := 0; i < 500; i++ {
		m := s.AddMessage("user", "m", nil)
		if prev != "" && !(prev < m.ID) {
			t.Fatalf("append %d: id %q not after %q", i, m.ID, prev)
		}
		prev = m.ID
	}
}

func TestGetRecentMessages(t *testing.T) {
	t.Parallel()

	s := NewChatSession("sess-2", "")
	for i := 0; i < 20; i++ {
		s.AddMessage("user", "m", nil)
	}
	if got := len(s.GetRecentMessages(15)); got != 15 {
		t.Errorf("recent(15) = %d", got)
	}
	if got := len(s.GetRecentMessages(0)); got != 20 {
		t.Errorf("recent(0) should return all, got %d", got)
	}
}

func TestGraphHelpers(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	if g.Nodes == nil || g.Edges == nil {
		t.Fatal("empty graph must have non-nil slices")
	}
	g.AddNode(Node{ID: "a", Title: "Mathematics"})
	g.AddNode(Node{ID: "b", Title: "Physics"})
	if !g.HasNode("a") || g.HasNode("z") {
		t.Error("HasNode mismatch")
	}
	if n := g.FindByTitle("Physics"); n == nil || n.ID != "b" {
		t.Errorf("FindByTitle = %+v", n)
	}
	g.Connect("a", "b", "related")
	if len(g.Edges) != 1 || g.Edges[0].TargetID != "b" {
		t.Errorf("edges = %+v", g.Edges)
	}
}
