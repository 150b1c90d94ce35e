package config

import (
	"fmt"
	"time"

	"github.com/nao1215/msefunds/internal/browser"
)

// Default portal description.
const (
	// DefaultPortalURL is the MSE open-end investment funds page.
	DefaultPortalURL = "https://www.mse.mk/F/open-end-investment-funds"

	// DefaultDateLayout is the date format the portal's inputs accept.
	DefaultDateLayout = "01/02/2006"

	// DefaultLoadDelay is the settle time after the first navigation.
	DefaultLoadDelay = 5 * time.Second

	// DefaultSettleDelay is the settle time after Find and after Export.
	DefaultSettleDelay = 2 * time.Second
)

// DefaultMatchPatterns are substrings of the portal's export file name.
var DefaultMatchPatterns = []string{"Open-End", "Open - End"}

// Portal describes the export page: where it is, which elements drive
// the export, and how long the page needs to settle.
type Portal struct {
	// URL of the export page.
	URL string `yaml:"url,omitempty"`

	// DateLayout is a Go time layout for the date inputs.
	DateLayout string `yaml:"dateLayout,omitempty"`

	// FromDate is the start date input.
	FromDate browser.Selector `yaml:"fromDate,omitempty"`

	// ToDate is the end date input.
	ToDate browser.Selector `yaml:"toDate,omitempty"`

	// Find is the button that applies the date range.
	Find browser.Selector `yaml:"find,omitempty"`

	// Export is the trigger that produces the downloadable file.
	Export browser.Selector `yaml:"export,omitempty"`

	// LoadDelay is waited once after the first navigation.
	LoadDelay time.Duration `yaml:"loadDelay,omitempty"`

	// SettleDelay is waited after Find and after Export.
	SettleDelay time.Duration `yaml:"settleDelay,omitempty"`

	// MatchPatterns are substrings identifying a fresh export file.
	MatchPatterns []string `yaml:"matchPatterns,omitempty"`
}

// DefaultPortal returns the description of the live MSE portal.
func DefaultPortal() Portal {
	return Portal{
		URL:           DefaultPortalURL,
		DateLayout:    DefaultDateLayout,
		FromDate:      browser.ID("FromDate"),
		ToDate:        browser.ID("ToDate"),
		Find:          browser.XPath("//input[@value='Find']"),
		Export:        browser.ID("btnExport"),
		LoadDelay:     DefaultLoadDelay,
		SettleDelay:   DefaultSettleDelay,
		MatchPatterns: append([]string(nil), DefaultMatchPatterns...),
	}
}

// Merge returns p with every non-zero field of override applied.
func (p Portal) Merge(override Portal) Portal {
	result := p

	if override.URL != "" {
		result.URL = override.URL
	}
	if override.DateLayout != "" {
		result.DateLayout = override.DateLayout
	}
	if override.FromDate.Value != "" {
		result.FromDate = override.FromDate
	}
	if override.ToDate.Value != "" {
		result.ToDate = override.ToDate
	}
	if override.Find.Value != "" {
		result.Find = override.Find
	}
	if override.Export.Value != "" {
		result.Export = override.Export
	}
	if override.LoadDelay > 0 {
		result.LoadDelay = override.LoadDelay
	}
	if override.SettleDelay > 0 {
		result.SettleDelay = override.SettleDelay
	}
	if len(override.MatchPatterns) > 0 {
		result.MatchPatterns = override.MatchPatterns
	}

	return result
}

// Validate checks that every element the export workflow needs is described.
func (p Portal) Validate() error {
	if p.URL == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidPortal)
	}
	if p.DateLayout == "" {
		return fmt.Errorf("%w: dateLayout is empty", ErrInvalidPortal)
	}
	if len(p.MatchPatterns) == 0 {
		return fmt.Errorf("%w: matchPatterns is empty", ErrInvalidPortal)
	}

	selectors := map[string]browser.Selector{
		"fromDate": p.FromDate,
		"toDate":   p.ToDate,
		"find":     p.Find,
		"export":   p.Export,
	}
	for _, name := range []string{"fromDate", "toDate", "find", "export"} {
		if err := selectors[name].Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPortal, name, err)
		}
	}

	return nil
}
