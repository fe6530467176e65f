package session

import (
	"math"
	"strconv"
	"strings"

	"github.com/philipparndt/gowp/pkg/geometry"
)

// Status is the working plane indicator shown by the host: a short label
// and a one-line description.
type Status struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

const statusPrefix = "Current working plane: "

// namedStatus describes a plane picked by name, like "Top" or "Auto"
func namedStatus(name string, normal geometry.Vector3, offset float64) Status {
	label := name + offsetSuffix(offset)
	text := statusPrefix + label
	if offset != 0 {
		text += " Offset: " + formatFloat(offset)
	}
	return Status{Label: label, Text: text + " Dir: " + formatVector(normal, 4)}
}

// customStatus describes a plane derived from geometry. subject is the
// vector reported for it: the normal, or the new origin after a move.
func customStatus(subject, normal geometry.Vector3) Status {
	return Status{
		Label: "Custom",
		Text:  statusPrefix + formatVector(subject, 6) + " Dir: " + formatVector(normal, 4),
	}
}

// labelStatus describes a plane taken from a labelled object
func labelStatus(label string) Status {
	return Status{Label: label, Text: statusPrefix + label}
}

func offsetSuffix(offset float64) string {
	switch {
	case offset > 0:
		return " +O"
	case offset < 0:
		return " -O"
	}
	return ""
}

// formatVector prints "(x,y,z)" with every component cut to width characters
func formatVector(v geometry.Vector3, width int) string {
	parts := []string{
		truncate(formatFloat(v.X), width),
		truncate(formatFloat(v.Y), width),
		truncate(formatFloat(v.Z), width),
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func truncate(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s
}

// formatFloat renders the shortest decimal form that always carries a
// fractional part or exponent: 1 -> "1.0", 0.5 -> "0.5", 1e-05 -> "1e-05".
// Values within 1e-12 of zero, including negative zero, print as "0.0".
func formatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.Abs(x) < 1e-12:
		return "0.0"
	}

	sci := strconv.FormatFloat(x, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
