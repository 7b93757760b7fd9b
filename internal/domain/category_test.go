package domain

import (
	"errors"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCat  Category
		wantConf float64
	}{
		{"job", "job:0.9", CategoryJob, 0.9},
		{"candidate", "candidate:0.75", CategoryCandidate, 0.75},
		{"other", "other:1", CategoryOther, 1},
		{"uppercase category", "JOB:0.8", CategoryJob, 0.8},
		{"surrounding whitespace", "  job : 0.85 ", CategoryJob, 0.85},
		{"zero confidence", "other:0", CategoryOther, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, conf, err := ParseVerdict(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cat != tt.wantCat {
				t.Errorf("category = %q, want %q", cat, tt.wantCat)
			}
			if conf != tt.wantConf {
				t.Errorf("confidence = %v, want %v", conf, tt.wantConf)
			}
		})
	}
}

func TestParseVerdict_Unparsable(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing delimiter", "job 0.9"},
		{"comma delimiter", "job,0.9"},
		{"unknown category", "spam:0.9"},
		{"non-numeric confidence", "job:high"},
		{"confidence above one", "job:1.5"},
		{"negative confidence", "job:-0.1"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseVerdict(tt.input)
			if !errors.Is(err, ErrUnparsableVerdict) {
				t.Errorf("expected ErrUnparsableVerdict, got %v", err)
			}
		})
	}
}

func TestParseMessageType(t *testing.T) {
	tests := []struct {
		input string
		want  MessageType
	}{
		{"TECHNICAL", TypeTechnical},
		{"job_related", TypeJobRelated},
		{" General \n", TypeGeneral},
	}

	for _, tt := range tests {
		got, err := ParseMessageType(tt.input)
		if err != nil {
			t.Fatalf("ParseMessageType(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseMessageType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if _, err := ParseMessageType("sales"); !errors.Is(err, ErrUnparsableVerdict) {
		t.Errorf("expected ErrUnparsableVerdict for unknown type, got %v", err)
	}
}
