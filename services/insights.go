package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"glassdoor-scraper/models"
	"glassdoor-scraper/utils"
)

const topRatedCount = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(jobs []*models.JobSummary) *models.InsightReport {
	report := &models.InsightReport{
		JobsByCompany: make(map[string]int),
		JobsBySector:  make(map[string]int),
	}

	if len(jobs) == 0 {
		return report
	}

	report.TotalJobs = len(jobs)

	var paid []*models.JobSummary
	var rated []*models.JobSummary

	for _, j := range jobs {
		if j.SalaryMid() > 0 {
			paid = append(paid, j)
		}
		if j.Rating > 0 {
			rated = append(rated, j)
		}
		if j.Company != "" {
			report.JobsByCompany[j.Company]++
		}
		if j.Sector != "" {
			report.JobsBySector[j.Sector]++
		}
	}

	// Salary stats over the range midpoint
	report.WithSalary = len(paid)
	if len(paid) > 0 {
		report.MinSalary = paid[0].SalaryMid()
		report.MaxSalary = paid[0].SalaryMid()
		report.BestPaid = paid[0]
		var total float64
		for _, j := range paid {
			mid := j.SalaryMid()
			total += mid
			if mid < report.MinSalary {
				report.MinSalary = mid
			}
			if mid > report.MaxSalary {
				report.MaxSalary = mid
				report.BestPaid = j
			}
		}
		report.AverageSalary = round2(total / float64(len(paid)))
		report.MinSalary = round2(report.MinSalary)
		report.MaxSalary = round2(report.MaxSalary)
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].Rating > rated[j].Rating
	})
	if len(rated) > topRatedCount {
		report.TopRated = rated[:topRatedCount]
	} else {
		report.TopRated = rated
	}

	s.logger.Debug("[insights] %d jobs, %d with salary, %d rated", report.TotalJobs, report.WithSalary, len(rated))
	return report
}

// Print renders the report to stdout.
func (s *InsightService) Print(r *models.InsightReport) {
	s.Fprint(os.Stdout, r)
}

func (s *InsightService) Fprint(w io.Writer, r *models.InsightReport) {
	fmt.Fprintln(w, pterm.DefaultHeader.WithFullWidth().Sprint("GLASSDOOR SCRAPE INSIGHTS"))

	fmt.Fprintln(w, pterm.DefaultSection.Sprint("Overview"))
	fmt.Fprintf(w, "  Total jobs scraped : %s\n", pterm.Bold.Sprint(humanize.Comma(int64(r.TotalJobs))))
	fmt.Fprintf(w, "  With salary data   : %s\n", pterm.Bold.Sprint(humanize.Comma(int64(r.WithSalary))))

	fmt.Fprintln(w, pterm.DefaultSection.Sprint("Salary Statistics (yearly, range midpoint)"))
	if r.WithSalary > 0 {
		fmt.Fprintf(w, "  Average salary : %s\n", colourSalary(r.AverageSalary))
		fmt.Fprintf(w, "  Minimum salary : %s\n", colourSalary(r.MinSalary))
		fmt.Fprintf(w, "  Maximum salary : %s\n", colourSalary(r.MaxSalary))
	} else {
		fmt.Fprintln(w, "  No salary data available")
	}

	if r.BestPaid != nil {
		fmt.Fprintln(w, pterm.DefaultSection.Sprint("Best Paid Job"))
		fmt.Fprintf(w, "  %s\n", truncate(r.BestPaid.Title, 50))
		fmt.Fprintf(w, "  Company  : %s\n", r.BestPaid.Company)
		fmt.Fprintf(w, "  Location : %s\n", r.BestPaid.Location)
		fmt.Fprintf(w, "  Salary   : %s\n", colourSalary(r.BestPaid.SalaryMid()))
	}

	fmt.Fprintln(w, pterm.DefaultSection.Sprintf("Top %d Highest Rated Employers", topRatedCount))
	if len(r.TopRated) == 0 {
		fmt.Fprintln(w, "  No rated jobs found")
	} else {
		data := pterm.TableData{{"#", "Job", "Company", "Rating"}}
		for i, j := range r.TopRated {
			data = append(data, []string{
				fmt.Sprintf("%d", i+1),
				truncate(j.Title, 38),
				truncate(j.Company, 28),
				pterm.Green(fmt.Sprintf("%.1f ★", j.Rating)),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			s.logger.Warn("[insights] Could not render rating table: %v", err)
		} else {
			fmt.Fprintln(w, table)
		}
	}

	printCounts(w, "Jobs by Company", r.JobsByCompany, "No company data")
	printCounts(w, "Jobs by Sector", r.JobsBySector, "No sector data")
	fmt.Fprintln(w)
}

func printCounts(w io.Writer, title string, counts map[string]int, empty string) {
	fmt.Fprintln(w, pterm.DefaultSection.Sprint(title))
	if len(counts) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}

	type keyCount struct {
		key   string
		count int
	}
	var rows []keyCount
	for k, n := range counts {
		rows = append(rows, keyCount{k, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	for _, kc := range rows {
		bar := strings.Repeat("█", kc.count)
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(kc.key, 28), bar, kc.count)
	}
}

// colourSalary formats a yearly amount with thousands separators, coloured
// by band.
func colourSalary(v float64) string {
	formatted := "$" + humanize.Comma(int64(v))
	switch {
	case v >= 200_000:
		return pterm.Green(formatted)
	case v >= 120_000:
		return pterm.LightGreen(formatted)
	case v >= 60_000:
		return pterm.Yellow(formatted)
	default:
		return pterm.Red(formatted)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
