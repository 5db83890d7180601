package subjects

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialstorm/internal/services/llm"
)

func stubLLM(t *testing.T, responses ...string) *llm.Client {
	t.Helper()
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := responses[len(responses)-1]
		if call < len(responses) {
			content = responses[call]
		}
		call++
		w.Header().Set("Content-Type", "application/json")
		payload := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return llm.NewClient(llm.Config{APIKey: "test", BaseURL: server.URL, Model: "test-model"})
}

func failingLLM(t *testing.T) *llm.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)
	return llm.NewClient(llm.Config{APIKey: "test", BaseURL: server.URL, Model: "test-model"},
		llm.WithRetryMaxAttempts(1), llm.WithSleeper(func(time.Duration) {}))
}

func TestSubjectCanonical(t *testing.T) {
	cases := []struct {
		name    string
		subject Subject
		want    string
	}{
		{"text", Text("  mountain gorilla  "), "mountain gorilla"},
		{"list skips blanks", List("", "eiffel tower", "paris"), "eiffel tower"},
		{"structured", Structured("great wall of china", []string{"china wall"}, nil), "great wall of china"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.subject.Canonical(); got != tc.want {
				t.Fatalf("Canonical() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsGeneric(t *testing.T) {
	cases := []struct {
		phrase string
		want   bool
	}{
		{"person", true},
		{"a thing in the background", true},
		{"mountain gorilla", false},
		{"person holding a trophy", false},
		{"", true},
	}
	for _, tc := range cases {
		if got := IsGeneric(tc.phrase); got != tc.want {
			t.Errorf("IsGeneric(%q) = %v, want %v", tc.phrase, got, tc.want)
		}
	}
}

func TestEnforcePhrase(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"in band", "gorilla eating bamboo", "gorilla eating bamboo", true},
		{"truncated", "one two three four five six seven eight nine ten eleven", "one two three four five six seven eight nine ten", true},
		{"padded", "gorilla", "gorilla cinematic close-up", true},
		{"question rejected", "why do cats purr?", "", false},
		{"generic rejected", "the scene", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := EnforcePhrase(tc.in)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("EnforcePhrase(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestGeneralExtractorPadsWithTopic(t *testing.T) {
	client := stubLLM(t, `["mountain gorilla eating bamboo", "person", "jungle canopy from above"]`)
	extractor := NewGeneralExtractor(client, nil)

	phrases, err := extractor.Extract(context.Background(), Line{Text: "gorillas are gentle giants", MainTopic: "mountain gorillas"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(phrases) != 4 {
		t.Fatalf("Extract() returned %d phrases, want exactly 4", len(phrases))
	}
	if phrases[0] != "mountain gorilla eating bamboo" {
		t.Errorf("phrases[0] = %q, want primary phrase first", phrases[0])
	}
	for _, phrase := range phrases {
		if IsGeneric(phrase) {
			t.Errorf("generic phrase %q escaped the filter", phrase)
		}
	}
	if phrases[2] != "mountain gorillas" || phrases[3] != "mountain gorillas" {
		t.Errorf("short list not padded with topic: %v", phrases)
	}
}

func TestGeneralExtractorSurvivesModelFailure(t *testing.T) {
	extractor := NewGeneralExtractor(failingLLM(t), nil)
	phrases, err := extractor.Extract(context.Background(), Line{Text: "gorillas are gentle", MainTopic: "mountain gorillas"})
	if err != nil {
		t.Fatalf("Extract() error = %v, want nil on model failure", err)
	}
	if len(phrases) != 4 {
		t.Fatalf("Extract() returned %d phrases, want 4 padded fallbacks", len(phrases))
	}
}

func TestMultiSubjectExtractor(t *testing.T) {
	extractor := NewMultiSubjectExtractor()
	cases := []struct {
		name string
		line string
		want []string
	}{
		{"two entities", "a cat and a dog", []string{"cat and dog together"}},
		{"narrative line skipped", "the empire expanded rapidly and conquered many distant lands", nil},
		{"single entity skipped", "a lone wolf", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractor.Extract(context.Background(), Line{Text: tc.line})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tc.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}

func TestQuestionExtractorGatesLexically(t *testing.T) {
	extractor := NewQuestionExtractor(failingLLM(t))
	phrases, err := extractor.Extract(context.Background(), Line{Text: "gorillas live in the mountains"})
	if err != nil || phrases != nil {
		t.Fatalf("Extract() = (%v, %v), want (nil, nil) for non-question without a model call", phrases, err)
	}
}

func TestQuestionExtractorConvertsQuestions(t *testing.T) {
	extractor := NewQuestionExtractor(stubLLM(t, "cat closeup purring on a lap"))
	phrases, err := extractor.Extract(context.Background(), Line{Text: "Why do cats purr?"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(phrases) != 1 || phrases[0] != "cat closeup purring on a lap" {
		t.Fatalf("Extract() = %v, want the converted visual", phrases)
	}
}

func TestQuestionExtractorDeclinesOnAmbiguity(t *testing.T) {
	extractor := NewQuestionExtractor(stubLLM(t, "NONE"))
	phrases, err := extractor.Extract(context.Background(), Line{Text: "What is the meaning of it all?"})
	if err != nil || phrases != nil {
		t.Fatalf("Extract() = (%v, %v), want no result on ambiguity", phrases, err)
	}
}

func TestSymbolicExtractorRetriesThenUsesRules(t *testing.T) {
	// Both model answers are generic, so the rule map must resolve it.
	extractor := NewSymbolicExtractor(stubLLM(t, "a scene", "the background"))
	phrases, err := extractor.Extract(context.Background(), Line{Text: "sweet victory at last"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(phrases) != 1 || phrases[0] != "athlete raising a gold trophy" {
		t.Fatalf("Extract() = %v, want the canonical victory visual", phrases)
	}
}

func TestSymbolicExtractorAcceptsFirstLiteralAnswer(t *testing.T) {
	extractor := NewSymbolicExtractor(stubLLM(t, "golden crown on red velvet cushion"))
	phrases, err := extractor.Extract(context.Background(), Line{Text: "the royalty of this era"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(phrases) != 1 || phrases[0] != "golden crown on red velvet cushion" {
		t.Fatalf("Extract() = %v, want the literalized phrase", phrases)
	}
}

func TestSymbolicExtractorSkipsConcreteLines(t *testing.T) {
	// A line with no abstract marker must be gated out before any
	// model round trip.
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	client := llm.NewClient(llm.Config{APIKey: "test", BaseURL: server.URL, Model: "test-model"})

	extractor := NewSymbolicExtractor(client)
	phrases, err := extractor.Extract(context.Background(), Line{Text: "mountain gorilla eating bamboo shoots"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if phrases != nil {
		t.Fatalf("Extract() = %v, want nil for a concrete line", phrases)
	}
	if requests != 0 {
		t.Fatalf("concrete line triggered %d model requests, want 0", requests)
	}
}

func TestLineIsAbstract(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"sweet victory at last", true},
		{"their dreams outlived the empire", true},
		{"mountain gorilla eating bamboo", false},
		{"cable car climbing a steep street", false},
	}
	for _, tc := range cases {
		if got := lineIsAbstract(tc.line); got != tc.want {
			t.Errorf("lineIsAbstract(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestEmotionExtractor(t *testing.T) {
	extractor := NewEmotionExtractor()
	cases := []struct {
		line string
		want string
	}{
		{"she was worried sick", "worried person biting their nails"},
		{"meanwhile across town", "split screen city streets at rush hour"},
		{"gorillas eat bamboo", ""},
	}
	for _, tc := range cases {
		phrases, err := extractor.Extract(context.Background(), Line{Text: tc.line})
		if err != nil {
			t.Fatalf("Extract(%q) error = %v", tc.line, err)
		}
		if tc.want == "" {
			if phrases != nil {
				t.Errorf("Extract(%q) = %v, want no result", tc.line, phrases)
			}
			continue
		}
		if len(phrases) != 1 || phrases[0] != tc.want {
			t.Errorf("Extract(%q) = %v, want [%q]", tc.line, phrases, tc.want)
		}
	}
}

func TestRegistryMergesAndCaps(t *testing.T) {
	registry := NewRegistry(nil,
		staticStrategy{name: "a", phrases: []string{"gorilla eating bamboo", "a scene"}},
		staticStrategy{name: "b", phrases: []string{"GORILLA EATING BAMBOO", "jungle canopy from above"}},
		staticStrategy{name: "off", phrases: []string{"never seen phrase here"}, unavailable: true},
		erroringStrategy{},
		staticStrategy{name: "c", phrases: []string{"silverback beating its chest", "waterfall in dense jungle"}},
	)

	got := registry.Extract(context.Background(), Line{Text: "gorillas"}, 3)
	want := []string{"gorilla eating bamboo", "jungle canopy from above", "silverback beating its chest"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Extract() = %v, want %v", got, want)
	}
}

type staticStrategy struct {
	name        string
	phrases     []string
	unavailable bool
}

func (s staticStrategy) Name() string        { return s.name }
func (s staticStrategy) Available() bool     { return !s.unavailable }
func (s staticStrategy) Extract(context.Context, Line) ([]string, error) {
	return s.phrases, nil
}

type erroringStrategy struct{}

func (erroringStrategy) Name() string    { return "erroring" }
func (erroringStrategy) Available() bool { return true }
func (erroringStrategy) Extract(context.Context, Line) ([]string, error) {
	return nil, fmt.Errorf("extractor backend unavailable")
}
