package detector

import (
	"strings"
	"testing"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}
	return d
}

func TestDetect_Keywords(t *testing.T) {
	d := newTestDetector(t)

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "hdfc header", text: "HDFC BANK LTD\nStatement of Account", want: "hdfc"},
		{name: "sbi full name", text: "STATE BANK OF INDIA\nAccount Statement", want: "sbi"},
		{name: "icici", text: "ICICI Bank statement for March", want: "icici"},
		{name: "axis", text: "AXIS BANK\nSavings Account", want: "axis"},
		{name: "pnb", text: "PUNJAB NATIONAL BANK passbook", want: "pnb"},
		{name: "lowercase keyword", text: "statement from hdfc bank", want: "hdfc"},
		{name: "no signal", text: "some unrelated text", want: GenericBank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// Keyword ties resolve to the earlier registered profile.
func TestDetect_KeywordPrecedence(t *testing.T) {
	d := newTestDetector(t)

	text := "Transfer from SBI account to HDFC account"
	if got := d.Detect(text); got != "hdfc" {
		t.Errorf("Detect = %q, want hdfc (registration order wins)", got)
	}
}

func TestDetect_DateFormatPrevalence(t *testing.T) {
	d := newTestDetector(t)

	// Dash-separated dates are the sbi profile's convention; no keywords
	// appear anywhere.
	lines := []string{
		"15-03-2024 Payment received 5000.00 CR",
		"16-03-2024 Cash withdrawal 2000.00 DR",
		"17-03-2024 Grocery store 450.00 DR",
	}
	if got := d.Detect(strings.Join(lines, "\n")); got != "sbi" {
		t.Errorf("Detect = %q, want sbi from date format prevalence", got)
	}
}

func TestDetect_AmountFormatFallback(t *testing.T) {
	d := newTestDetector(t)

	// No keywords, no recognizable dates, but plenty of comma-grouped
	// amounts: classifies as generic.
	text := "opening 1,000.00 then 2,500.00 and 3,750.50 also 10,000.00 plus 1,234.56"
	if got := d.Detect(text); got != GenericBank {
		t.Errorf("Detect = %q, want %q", got, GenericBank)
	}
}

// Detection is a pure function of the text: repeated calls agree.
func TestDetect_Deterministic(t *testing.T) {
	d := newTestDetector(t)

	text := "15/03/2024 NEFT from donor 5,000.00 CR\n16/03/2024 ATM WDL 2,000.00 DR"
	first := d.Detect(text)
	for i := 0; i < 5; i++ {
		if got := d.Detect(text); got != first {
			t.Fatalf("Detect changed between calls: %q then %q", first, got)
		}
	}
}

func TestAddProfile(t *testing.T) {
	d := newTestDetector(t)

	err := d.AddProfile(&Profile{
		Name:       "Kotak",
		Keywords:   []string{"KOTAK"},
		DateFormat: `\d{2}/\d{2}/\d{4}`,
	})
	if err != nil {
		t.Fatalf("AddProfile returned error: %v", err)
	}

	if got := d.Detect("KOTAK MAHINDRA BANK statement"); got != "kotak" {
		t.Errorf("Detect = %q, want kotak", got)
	}

	names := d.Profiles()
	if names[len(names)-1] != "kotak" {
		t.Errorf("Profiles() = %v, want kotak appended last", names)
	}
}

// Profiles passed to the constructor normalize the same way appended
// ones do, so detection results always match parser family keys.
func TestNew_NormalizesProfileNames(t *testing.T) {
	d, err := New([]*Profile{{
		Name:       "Kotak",
		Keywords:   []string{"KOTAK"},
		DateFormat: `\d{2}/\d{2}/\d{4}`,
	}})
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	if got := d.Detect("KOTAK MAHINDRA BANK statement"); got != "kotak" {
		t.Errorf("Detect = %q, want kotak", got)
	}
	if names := d.Profiles(); names[0] != "kotak" {
		t.Errorf("Profiles() = %v, want lowercased name", names)
	}
}

func TestAddProfile_InvalidPattern(t *testing.T) {
	d := newTestDetector(t)
	err := d.AddProfile(&Profile{Name: "bad", DateFormat: `[`})
	if err == nil {
		t.Error("AddProfile accepted an invalid regex")
	}
}
