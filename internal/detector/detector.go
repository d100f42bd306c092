// Package detector classifies raw statement text into a known bank
// profile. Detection is a pure function of the text and the registered
// profiles; ties are broken by registration order, which makes the
// profile list order part of the configuration contract.
package detector

import (
	"regexp"
	"strings"

	"bank-statement-ledger/pkg/logger"
)

// GenericBank is returned when no profile matches.
const GenericBank = "generic"

// Profile describes how to recognize one bank's statement layout.
type Profile struct {
	Name       string   `json:"name" mapstructure:"name"`
	Keywords   []string `json:"keywords" mapstructure:"keywords"`
	DateFormat string   `json:"date_format" mapstructure:"date_format"`
	// AmountFormat recognizes the bank's amount rendering; currently all
	// profiles share the comma-grouped two-decimal convention.
	AmountFormat string `json:"amount_format" mapstructure:"amount_format"`

	dateRe   *regexp.Regexp
	amountRe *regexp.Regexp
}

// Detector holds the ordered profile registry.
type Detector struct {
	profiles []*Profile
	logger   logger.Logger
}

// DefaultProfiles returns the built-in bank profiles in precedence
// order. Earlier profiles win keyword ties.
func DefaultProfiles() []*Profile {
	return []*Profile{
		{
			Name:         "hdfc",
			Keywords:     []string{"HDFC", "HDFC BANK"},
			DateFormat:   `\d{2}/\d{2}/\d{4}`,
			AmountFormat: `[\d,]+\.\d{2}`,
		},
		{
			Name:         "sbi",
			Keywords:     []string{"SBI", "STATE BANK", "STATE BANK OF INDIA"},
			DateFormat:   `\d{2}-\d{2}-\d{4}`,
			AmountFormat: `[\d,]+\.\d{2}`,
		},
		{
			Name:         "icici",
			Keywords:     []string{"ICICI", "ICICI BANK"},
			DateFormat:   `\d{2}/\d{2}/\d{4}`,
			AmountFormat: `[\d,]+\.\d{2}`,
		},
		{
			Name:         "axis",
			Keywords:     []string{"AXIS", "AXIS BANK"},
			DateFormat:   `\d{2}/\d{2}/\d{4}`,
			AmountFormat: `[\d,]+\.\d{2}`,
		},
		{
			Name:         "pnb",
			Keywords:     []string{"PNB", "PUNJAB NATIONAL BANK"},
			DateFormat:   `\d{2}/\d{2}/\d{4}`,
			AmountFormat: `[\d,]+\.\d{2}`,
		},
	}
}

// New creates a Detector over the given profiles. A nil or empty slice
// uses the built-in defaults.
func New(profiles []*Profile) (*Detector, error) {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}

	d := &Detector{
		logger: logger.GetGlobalLogger().WithComponent("detector"),
	}
	for _, p := range profiles {
		if err := d.compile(p); err != nil {
			return nil, err
		}
		d.profiles = append(d.profiles, p)
	}
	return d, nil
}

// compile prepares a profile for registration: regexes compiled, name
// lowercased to match parser pattern family keys.
func (d *Detector) compile(p *Profile) error {
	p.Name = strings.ToLower(p.Name)

	var err error
	if p.DateFormat != "" {
		if p.dateRe, err = regexp.Compile(p.DateFormat); err != nil {
			return err
		}
	}
	if p.AmountFormat != "" {
		if p.amountRe, err = regexp.Compile(p.AmountFormat); err != nil {
			return err
		}
	}
	return nil
}

// AddProfile appends a custom profile to the registry. Appended profiles
// have the lowest precedence on keyword ties.
func (d *Detector) AddProfile(p *Profile) error {
	if err := d.compile(p); err != nil {
		return err
	}
	d.profiles = append(d.profiles, p)
	return nil
}

// Profiles returns the registered profile names in precedence order.
func (d *Detector) Profiles() []string {
	names := make([]string, len(d.profiles))
	for i, p := range d.profiles {
		names[i] = p.Name
	}
	return names
}

// Detect classifies raw statement text into a bank profile name or
// GenericBank. The cascade: keyword scan in registration order, then
// date-pattern prevalence, then amount-format fallback.
func (d *Detector) Detect(text string) string {
	textUpper := strings.ToUpper(text)

	for _, p := range d.profiles {
		for _, keyword := range p.Keywords {
			if strings.Contains(textUpper, strings.ToUpper(keyword)) {
				d.logger.WithFields(logger.Fields{
					"bank":    p.Name,
					"keyword": keyword,
				}).Debug("Detected bank by keyword")
				return p.Name
			}
		}
	}

	if name := d.detectByDateFormat(text); name != "" {
		d.logger.WithField("bank", name).Debug("Detected bank by date format prevalence")
		return name
	}

	if name := d.detectByAmountFormat(text); name != "" {
		return name
	}

	return GenericBank
}

// detectByDateFormat counts each profile's date regex matches across the
// whole text and picks the profile with the most. Ties go to the first
// enumerated profile.
func (d *Detector) detectByDateFormat(text string) string {
	best := ""
	bestCount := 0

	for _, p := range d.profiles {
		if p.dateRe == nil {
			continue
		}
		count := len(p.dateRe.FindAllString(text, -1))
		if count > bestCount {
			best = p.Name
			bestCount = count
		}
	}

	return best
}

// detectByAmountFormat is the last heuristic: a text with several
// comma-grouped amounts is at least a recognizable statement, so it
// classifies as generic rather than staying inconclusive.
func (d *Detector) detectByAmountFormat(text string) string {
	if len(d.profiles) == 0 {
		return ""
	}
	re := d.profiles[0].amountRe
	if re == nil {
		return ""
	}

	matches := re.FindAllString(text, -1)
	if len(matches) < 5 {
		return ""
	}
	for _, m := range matches {
		if strings.Contains(m, ",") {
			return GenericBank
		}
	}
	return ""
}
