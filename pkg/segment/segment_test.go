package segment

import (
	"reflect"
	"testing"
)

func TestPunktSegmenter_Segment(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		language string
		want     []string
	}{
		{"empty", "", "en", nil},
		{"blank", "   ", "en", nil},
		{"no terminal punctuation", "  just a fragment without an ending  ", "en", []string{"just a fragment without an ending"}},
		{"two sentences", "The cat sat on the mat. The dog ran away.", "en", []string{"The cat sat on the mat.", "The dog ran away."}},
		{"question and exclamation", "Where are you? I am here!", "en", []string{"Where are you?", "I am here!"}},
		{"spanish", "El gato duerme. El perro corre.", "es", []string{"El gato duerme.", "El perro corre."}},
		{"unknown language falls back", "First one. Second one.", "xx", []string{"First one.", "Second one."}},
	}

	s := NewPunktSegmenter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Segment(tt.text, tt.language)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPunktSegmenter_Deterministic(t *testing.T) {
	s := NewPunktSegmenter()
	text := "Dr. Smith arrived at 5 p.m. on Monday. He left early. Nobody noticed."

	first := s.Segment(text, "en")
	for i := 0; i < 3; i++ {
		if again := s.Segment(text, "en"); !reflect.DeepEqual(first, again) {
			t.Fatalf("segmentation changed between calls: %#v vs %#v", first, again)
		}
	}
	if len(first) == 0 {
		t.Fatal("expected sentences")
	}
}
