package normalize

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "slash day first", input: "15/03/2024", want: "2024-03-15"},
		{name: "dash day first", input: "15-03-2024", want: "2024-03-15"},
		{name: "dot day first", input: "15.03.2024", want: "2024-03-15"},
		{name: "iso", input: "2024-03-15", want: "2024-03-15"},
		{name: "year first slash", input: "2024/03/15", want: "2024-03-15"},
		{name: "single digit day and month", input: "5/3/2024", want: "2024-03-05"},
		{name: "two digit year below pivot", input: "15/03/24", want: "2024-03-15"},
		{name: "two digit year at pivot", input: "15/03/50", want: "1950-03-15"},
		{name: "surrounding whitespace", input: " 15/03/2024 ", want: "2024-03-15"},
		{name: "empty", input: "", wantErr: true},
		{name: "not a date", input: "NEFT", wantErr: true},
		{name: "month overflow", input: "15/13/2024", wantErr: true},
		{name: "day overflow", input: "32/01/2024", wantErr: true},
		{name: "impossible february date", input: "31/02/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) = %s, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) returned error: %v", tt.input, err)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "15/03/2024" {
		t.Errorf("FormatDate = %q, want 15/03/2024", got)
	}
}

// Parsing a formatted date must return the original calendar day.
func TestDateRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	for _, d := range dates {
		reparsed, err := ParseDate(FormatDate(d))
		if err != nil {
			t.Fatalf("round trip of %s failed: %v", d, err)
		}
		if !reparsed.Equal(d) {
			t.Errorf("round trip of %s = %s", d, reparsed)
		}
	}
}

func TestDetectDateLayout(t *testing.T) {
	layout, err := DetectDateLayout("15-03-2024")
	if err != nil {
		t.Fatalf("DetectDateLayout returned error: %v", err)
	}
	if layout != "2-1-2006" {
		t.Errorf("DetectDateLayout = %q, want 2-1-2006", layout)
	}

	if _, err := DetectDateLayout("garbage"); err == nil {
		t.Error("DetectDateLayout accepted a non-date string")
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("01/01/2024") {
		t.Error("ValidDate rejected a valid date")
	}
	if ValidDate("99/99/9999") {
		t.Error("ValidDate accepted an impossible date")
	}
}
