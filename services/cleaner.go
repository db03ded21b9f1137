package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"glassdoor-scraper/models"
	"glassdoor-scraper/utils"
)

// hoursPerYear annualises hourly pay (40h x 52 weeks).
const hoursPerYear = 2080

var (
	// salaryRegexp captures "$120K", "$45.50" or "$1.2M" amounts
	salaryRegexp = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)\s*([KkMm])?`)
	// hourlyRegexp detects hourly estimates such as "Per Hour" or "/hr"
	hourlyRegexp = regexp.MustCompile(`(?i)per\s+hour|/\s*hr\b|an\s+hour`)
	// ratingRegexp captures a numeric rating in the 0.0–5.0 range
	ratingRegexp = regexp.MustCompile(`\b([0-5](?:\.\d{1,2})?)\b`)
)

// Cleaner turns collected JobRecords into numeric JobSummaries.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses every record. Records without a title are dropped and repeated
// title/company/location triples are kept once.
func (c *Cleaner) Clean(records []models.JobRecord) []*models.JobSummary {
	seen := make(map[string]struct{})
	result := make([]*models.JobSummary, 0, len(records))

	for _, r := range records {
		title := normaliseText(r.Title)
		if title == "" {
			c.logger.Warn("[cleaner] Dropping record without title (company: %s)", r.Company)
			continue
		}

		key := strings.ToLower(title + "|" + r.Company + "|" + r.Location)
		if _, dup := seen[key]; dup {
			c.logger.Debug("[cleaner] Duplicate job skipped: %s at %s", title, r.Company)
			continue
		}
		seen[key] = struct{}{}

		low, high := c.parseSalary(r.SalaryEstimate)
		result = append(result, &models.JobSummary{
			Title:      title,
			Company:    normaliseText(r.Company),
			Location:   normaliseText(r.Location),
			Sector:     normaliseText(r.Sector),
			Rating:     c.parseRating(r.Rating),
			SalaryLow:  low,
			SalaryHigh: high,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d jobs (dropped %d)",
		len(records), len(result), len(records)-len(result))
	return result
}

// parseSalary extracts the yearly low/high bounds of a salary estimate.
// Examples:
//
//	"$80K - $120K (Employer est.)" → 80000, 120000
//	"$95K (Glassdoor est.)"        → 95000, 0
//	"$40.00 - $50.00 Per Hour"     → 83200, 104000
func (c *Cleaner) parseSalary(raw string) (low, high float64) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == models.Sentinel {
		return 0, 0
	}

	matches := salaryRegexp.FindAllStringSubmatch(raw, 2)
	if len(matches) == 0 {
		return 0, 0
	}

	amounts := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return 0, 0
		}
		switch strings.ToLower(m[2]) {
		case "k":
			v *= 1_000
		case "m":
			v *= 1_000_000
		}
		amounts = append(amounts, v)
	}

	if hourlyRegexp.MatchString(raw) {
		for i := range amounts {
			amounts[i] *= hoursPerYear
		}
		c.logger.Debug("[cleaner] Hourly salary annualised: %q → %.0f", raw, amounts[0])
	}

	low = amounts[0]
	if len(amounts) > 1 {
		high = amounts[1]
	}
	if high != 0 && high < low {
		low, high = high, low
	}
	return low, high
}

// parseRating extracts a 0.0–5.0 numeric rating from a raw string.
func (c *Cleaner) parseRating(raw string) float64 {
	if raw == models.Sentinel {
		return 0
	}
	match := ratingRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return 0
	}
	val, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	if val < 0 || val > 5 {
		return 0
	}
	return val
}

// normaliseText strips leading/trailing whitespace and collapses internal
// whitespace. The sentinel normalises to the empty string.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	if s == models.Sentinel {
		return ""
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
