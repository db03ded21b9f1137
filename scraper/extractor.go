// Package scraper holds the site-independent pieces of the job collector:
// field extraction from a detail pane snapshot, modal dismissal and the
// pagination state machine that drives a browser.Session.
package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"

	"glassdoor-scraper/config"
	"glassdoor-scraper/models"
)

// ParseDetail parses the outer HTML of a detail pane into an extraction root.
func ParseDetail(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse detail pane: %w", err)
	}
	return doc.Selection, nil
}

// Extract returns the trimmed text of the first locator resolving to a
// non-empty element under root, or models.Sentinel when none does.
// Locators that fail to compile count as non-matches.
func Extract(root *goquery.Selection, locators config.Locator) string {
	for _, loc := range locators {
		if text := textOf(root, loc); text != "" {
			return text
		}
	}
	return models.Sentinel
}

// ExtractRecord pulls every JobRecord attribute out of root.
func ExtractRecord(root *goquery.Selection, f config.FieldLocators) models.JobRecord {
	rec := models.JobRecord{
		Title:          Extract(root, f.Title),
		Company:        Extract(root, f.Company),
		Location:       Extract(root, f.Location),
		SalaryEstimate: Extract(root, f.SalaryEstimate),
		Rating:         Extract(root, f.Rating),
		Description:    Extract(root, f.Description),
		Headquarters:   Extract(root, f.Headquarters),
		Size:           Extract(root, f.Size),
		Founded:        Extract(root, f.Founded),
		Ownership:      Extract(root, f.Ownership),
		Industry:       Extract(root, f.Industry),
		Sector:         Extract(root, f.Sector),
		Revenue:        Extract(root, f.Revenue),
		Competitors:    Extract(root, f.Competitors),
	}
	rec.Description = models.TruncateDescription(rec.Description)
	return rec
}

func isXPath(loc string) bool {
	return strings.HasPrefix(loc, "//") || strings.HasPrefix(loc, ".//") || strings.HasPrefix(loc, "(")
}

func textOf(root *goquery.Selection, loc string) string {
	if isXPath(loc) {
		for _, n := range root.Nodes {
			node, err := htmlquery.Query(n, loc)
			if err != nil || node == nil {
				continue
			}
			return strings.TrimSpace(htmlquery.InnerText(node))
		}
		return ""
	}

	sel, err := cascadia.Compile(loc)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(root.FindMatcher(sel).First().Text())
}
