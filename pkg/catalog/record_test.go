package catalog

import (
	"strings"
	"testing"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
		ok   bool
	}{
		{"full row", csvRow("10.5", "-20.25", "12.5", "5800"), Record{10.5, -20.25, 12.5, 5800}, true},
		{"crlf", csvRow("1", "2", "3", "4000") + "\r", Record{1, 2, 3, 4000}, true},
		{"null temperature", csvRow("1", "2", "3", "null"), Record{1, 2, 3, 0}, true},
		{"empty temperature", csvRow("1", "2", "3", ""), Record{1, 2, 3, 0}, true},
		{"empty magnitude", csvRow("1", "2", "", "5000"), Record{}, false},
		{"non-numeric ra", csvRow("abc", "2", "3", "5000"), Record{}, false},
		{"null dec", csvRow("1", "null", "3", "5000"), Record{}, false},
		{"empty line", "", Record{}, false},
		{"garbage", "!!!,,,\x00\xff", Record{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRow([]byte(tt.line))
			if ok != tt.ok {
				t.Fatalf("ParseRow() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseRow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseRowShortRows(t *testing.T) {
	fields := make([]string, ColMagnitude+1)
	for i := range fields {
		fields[i] = "1"
	}

	// Exactly up to the magnitude column: accepted, no temperature.
	rec, ok := ParseRow([]byte(strings.Join(fields, ",")))
	if !ok {
		t.Fatal("row ending at the magnitude column should parse")
	}
	if rec.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", rec.Temperature)
	}

	// One column short of the magnitude: dropped.
	if _, ok := ParseRow([]byte(strings.Join(fields[:ColMagnitude], ","))); ok {
		t.Error("row without a magnitude column should be dropped")
	}
}
