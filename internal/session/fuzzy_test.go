package session

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "Bohemian Rhapsody", want: "bohemian rhapsody"},
		{name: "ampersand expanded", in: "Earth, Wind & Fire", want: "earth wind and fire"},
		{name: "curly apostrophe", in: "Sweet Child O’ Mine", want: "sweet child o' mine"},
		{name: "punctuation stripped", in: "...Baby One More Time!", want: "baby one more time"},
		{name: "whitespace collapsed", in: "  Hotel   California  ", want: "hotel california"},
		{name: "digits kept", in: "99 Luftballons", want: "99 luftballons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGuessMatches(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		actual string
		want   bool
	}{
		{name: "exact", guess: "Imagine", actual: "Imagine", want: true},
		{name: "exact after normalization", guess: "imagine!", actual: "Imagine", want: true},
		{name: "guess contained in actual", guess: "Teen Spirit", actual: "Smells Like Teen Spirit", want: true},
		{name: "actual contained in guess", guess: "The Beatles band", actual: "The Beatles", want: true},
		{name: "small typo within tolerance", guess: "Bohemian Rapsody", actual: "Bohemian Rhapsody", want: true},
		{name: "too different", guess: "Stairway to Heaven", actual: "Imagine", want: false},
		{name: "empty guess", guess: "", actual: "Imagine", want: false},
		{name: "punctuation only guess", guess: "!!!", actual: "Imagine", want: false},
		{name: "ampersand variant", guess: "Earth Wind and Fire", actual: "Earth, Wind & Fire", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessMatches(tt.guess, tt.actual); got != tt.want {
				t.Fatalf("GuessMatches(%q, %q) = %v, want %v", tt.guess, tt.actual, got, tt.want)
			}
		})
	}
}
