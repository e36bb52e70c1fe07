package main

import (
	"testing"
)

func TestParseQuestionSpec(t *testing.T) {
	tests := []struct {
		spec     string
		wantName string
		wantType string
		wantErr  bool
	}{
		{"summary", "summary", "text", false},
		{"summary:text", "summary", "text", false},
		{"quality:rating", "quality", "rating", false},
		{"", "", "", true},
		{":rating", "", "", true},
		{"quality:stars", "", "", true},
	}
	for _, tt := range tests {
		q, err := parseQuestionSpec(tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseQuestionSpec(%q) expected error, got %+v", tt.spec, q)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseQuestionSpec(%q) unexpected error: %v", tt.spec, err)
			continue
		}
		if q.Name != tt.wantName {
			t.Errorf("parseQuestionSpec(%q) name = %q, want %q", tt.spec, q.Name, tt.wantName)
		}
		if q.Settings["type"] != tt.wantType {
			t.Errorf("parseQuestionSpec(%q) type = %v, want %q", tt.spec, q.Settings["type"], tt.wantType)
		}
	}
}

func TestParseFieldValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"hello", "hello"},
		{"5", int64(5)},
		{"-3", int64(-3)},
		{"0.75", 0.75},
		{"5x", "5x"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseFieldValue(tt.in); got != tt.want {
			t.Errorf("parseFieldValue(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}
