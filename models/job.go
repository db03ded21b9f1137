package models

import "unicode/utf8"

// Sentinel is stored in any JobRecord field that could not be extracted.
const Sentinel = "-1"

const (
	// DescriptionLimit is the number of characters kept from a long description.
	DescriptionLimit = 500
	// continuation is appended to a description that was cut at DescriptionLimit.
	continuation = "..."
)

// Columns is the fixed header of the tabular output, in JobRecord field order.
var Columns = []string{
	"Job Title", "Company", "Location", "Salary Estimate", "Rating", "Description",
	"Headquarters", "Size", "Founded", "Ownership", "Industry", "Sector", "Revenue", "Competitors",
}

// JobRecord holds the attributes extracted from one activated listing's detail pane.
// It is written to the sinks exactly as scraped; missing fields hold Sentinel.
type JobRecord struct {
	Title          string
	Company        string
	Location       string
	SalaryEstimate string
	Rating         string
	Description    string
	Headquarters   string
	Size           string
	Founded        string
	Ownership      string
	Industry       string
	Sector         string
	Revenue        string
	Competitors    string
}

// Row returns the record's values in Columns order.
func (j JobRecord) Row() []string {
	return []string{
		j.Title,
		j.Company,
		j.Location,
		j.SalaryEstimate,
		j.Rating,
		j.Description,
		j.Headquarters,
		j.Size,
		j.Founded,
		j.Ownership,
		j.Industry,
		j.Sector,
		j.Revenue,
		j.Competitors,
	}
}

// TruncateDescription cuts s to DescriptionLimit characters and marks the cut.
// A description of exactly DescriptionLimit characters is returned unchanged.
func TruncateDescription(s string) string {
	if utf8.RuneCountInString(s) <= DescriptionLimit {
		return s
	}
	return string([]rune(s)[:DescriptionLimit]) + continuation
}

// JobSummary is the cleaned, numeric view of a JobRecord used for insights.
type JobSummary struct {
	Title      string
	Company    string
	Location   string
	Sector     string
	Rating     float64
	SalaryLow  float64
	SalaryHigh float64
}

// SalaryMid returns the midpoint of the parsed salary range, or 0 when unknown.
func (s *JobSummary) SalaryMid() float64 {
	if s.SalaryLow == 0 && s.SalaryHigh == 0 {
		return 0
	}
	if s.SalaryHigh == 0 {
		return s.SalaryLow
	}
	return (s.SalaryLow + s.SalaryHigh) / 2
}

// InsightReport holds the computed analytics over the cleaned dataset.
type InsightReport struct {
	TotalJobs     int
	WithSalary    int
	AverageSalary float64
	MinSalary     float64
	MaxSalary     float64
	BestPaid      *JobSummary
	TopRated      []*JobSummary
	JobsByCompany map[string]int
	JobsBySector  map[string]int
}
