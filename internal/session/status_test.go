package session

import (
	"math"
	"testing"

	"github.com/philipparndt/gowp/pkg/geometry"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0.0"},
		{math.Copysign(0, -1), "0.0"},
		{1e-17, "0.0"},
		{1, "1.0"},
		{-1, "-1.0"},
		{0.5, "0.5"},
		{5, "5.0"},
		{0.7071067811865476, "0.7071067811865476"},
		{1e-05, "1e-05"},
		{1.5e16, "1.5e+16"},
		{123.25, "123.25"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := formatFloat(tt.input); got != tt.expected {
				t.Errorf("formatFloat(%v) failed: expected %s, got %s", tt.input, tt.expected, got)
			}
		})
	}
}

func TestFormatVector(t *testing.T) {
	v := geometry.NewVector3(0.7071067811865476, -0.7071067811865476, 0)
	if got := formatVector(v, 4); got != "(0.70,-0.7,0.0)" {
		t.Errorf("formatVector failed: expected (0.70,-0.7,0.0), got %s", got)
	}
	if got := formatVector(geometry.NewVector3(12.3456789, 1, -3.5), 6); got != "(12.345,1.0,-3.5)" {
		t.Errorf("formatVector failed: expected (12.345,1.0,-3.5), got %s", got)
	}
}

func TestNamedStatus(t *testing.T) {
	tests := []struct {
		name   string
		offset float64
		label  string
		text   string
	}{
		{"Top", 0, "Top", "Current working plane: Top Dir: (0.0,0.0,1.0)"},
		{"Top", 5, "Top +O", "Current working plane: Top +O Offset: 5.0 Dir: (0.0,0.0,1.0)"},
		{"Top", -1.5, "Top -O", "Current working plane: Top -O Offset: -1.5 Dir: (0.0,0.0,1.0)"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := namedStatus(tt.name, geometry.UnitZ, tt.offset)
			if got.Label != tt.label {
				t.Errorf("Label failed: expected %q, got %q", tt.label, got.Label)
			}
			if got.Text != tt.text {
				t.Errorf("Text failed: expected %q, got %q", tt.text, got.Text)
			}
		})
	}
}

func TestCustomStatus(t *testing.T) {
	got := customStatus(geometry.NewVector3(1.23456789, 0, 2), geometry.UnitZ)
	expected := Status{Label: "Custom", Text: "Current working plane: (1.2345,0.0,2.0) Dir: (0.0,0.0,1.0)"}
	if got != expected {
		t.Errorf("customStatus failed: expected %+v, got %+v", expected, got)
	}
}
