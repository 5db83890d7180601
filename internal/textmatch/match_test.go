package textmatch

import (
	"reflect"
	"testing"
)

func TestContainsToken(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   string
		want     bool
	}{
		{"exact token in filename", "eiffel_tower_portrait.mp4", "eiffel tower", true},
		{"token case insensitive", "Eiffel-Tower-4K.mp4", "eiffel tower", true},
		{"substring only", "toweringly tall", "tower", false},
		{"token at edges", "tower", "tower", true},
		{"missing word", "eiffel_view.mp4", "eiffel tower", false},
		{"diacritics folded", "café_paris.mp4", "cafe", true},
		{"empty haystack", "", "tower", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsToken(tt.haystack, tt.needle); got != tt.want {
				t.Errorf("ContainsToken(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
			}
		})
	}
}

func TestMajorWords(t *testing.T) {
	got := MajorWords("the Gorilla and the Mountain Gorilla")
	want := []string{"gorilla", "mountain"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MajorWords() = %v, want %v", got, want)
	}
}

func TestPhraseMatch(t *testing.T) {
	if !PhraseMatch("baby_mountain_gorilla.mp4", "mountain gorilla") {
		t.Error("expected contiguous tokens to phrase-match")
	}
	if PhraseMatch("gorilla on the mountain", "mountain gorilla") {
		t.Error("out-of-order tokens should not phrase-match")
	}
	if PhraseMatch("mountain view", "mountain gorilla") {
		t.Error("partial phrase should not match")
	}
}

func TestAllWordsMatch(t *testing.T) {
	if !AllWordsMatch("silverback gorilla in misty mountain jungle", "mountain gorilla") {
		t.Error("expected all major words to match")
	}
	if AllWordsMatch("silverback gorilla closeup", "mountain gorilla") {
		t.Error("did not expect match when a major word is missing")
	}
}

func TestCountWordMatches(t *testing.T) {
	matched, total := CountWordMatches("gorilla eating leaves", "mountain gorilla feeding")
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if matched != 1 {
		t.Fatalf("matched = %d, want 1", matched)
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		locator string
		want    string
	}{
		{"/tmp/job1/Eiffel_Tower_Portrait.mp4", "eiffel_tower_portrait"},
		{"https://cdn.example.com/videos/clip-991.mp4?dl=1", "clip-991"},
		{"library/rome_colosseum.mov", "rome_colosseum"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Stem(tt.locator); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.locator, got, tt.want)
		}
	}
}

func TestSynonymMatch(t *testing.T) {
	if !SynonymMatch("ape swinging through jungle", "gorilla closeup") {
		t.Error("expected synonym match for gorilla/ape")
	}
	if !SynonymMatch("gorilla documentary", "primate") {
		t.Error("expected reverse synonym lookup to match canonical term")
	}
	if SynonymMatch("city skyline at night", "gorilla closeup") {
		t.Error("unrelated text should not synonym-match")
	}
}
