package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Locator is an ordered list of selector strings tried in sequence.
// Entries starting with "//", ".//" or "(" are XPath, everything else is CSS.
type Locator []string

// Any joins the locator into a single CSS selector group matching any entry.
func (l Locator) Any() string {
	return strings.Join(l, ", ")
}

// FieldLocators holds one Locator per JobRecord attribute.
type FieldLocators struct {
	Title          Locator `yaml:"title"`
	Company        Locator `yaml:"company"`
	Location       Locator `yaml:"location"`
	SalaryEstimate Locator `yaml:"salary_estimate"`
	Rating         Locator `yaml:"rating"`
	Description    Locator `yaml:"description"`
	Headquarters   Locator `yaml:"headquarters"`
	Size           Locator `yaml:"size"`
	Founded        Locator `yaml:"founded"`
	Ownership      Locator `yaml:"ownership"`
	Industry       Locator `yaml:"industry"`
	Sector         Locator `yaml:"sector"`
	Revenue        Locator `yaml:"revenue"`
	Competitors    Locator `yaml:"competitors"`
}

// Selectors is the site markup table. The site changes its class names often;
// keep every selector here so a markup change is a data change.
type Selectors struct {
	Listings    Locator       `yaml:"listings"`
	DetailPane  Locator       `yaml:"detail_pane"`
	ModalClose  Locator       `yaml:"modal_close"`
	LoadMore    Locator       `yaml:"load_more"`
	SeeMoreText string        `yaml:"see_more_text"`
	Fields      FieldLocators `yaml:"fields"`
}

// DefaultSelectors returns the built-in Glassdoor markup table.
func DefaultSelectors() Selectors {
	return Selectors{
		Listings: Locator{
			"li[data-test='jobListing']",
			"li.JobsList_jobListItem__wjThv, div[data-test='job-listing']",
		},
		DetailPane: Locator{
			"div[data-test='job-details-panel']",
			"div[class*='JobDetails_jobDetails']",
		},
		ModalClose: Locator{
			"button[data-test='close-modal']",
			"button[aria-label='Close']",
			"button.CloseButton",
			"svg[data-test='close-icon']",
			"span[aria-label='Close']",
		},
		LoadMore:    Locator{"button[data-test='load-more']"},
		SeeMoreText: "See more jobs",
		Fields: FieldLocators{
			Title:          Locator{"h1.heading_Level1__w42c9", "h1[id*='jd-job-title-']", "div[data-test='jobTitle']"},
			Company:        Locator{"div.EmployerProfile_employerNameHeading__bXBYr", "div[data-test='employerName']"},
			Location:       Locator{"div[data-test='location']"},
			SalaryEstimate: Locator{"div[data-test='detailSalary']", "span[data-test='detailSalary']"},
			Rating:         Locator{"span.rating-single-star_RatingText__5fdjN", "span[data-test='detailRating']"},
			Description:    Locator{"div.JobDetails_jobDescription__uW_fK", "div[data-test='jobDescriptionText']"},
			Headquarters:   companyFact("Headquarters"),
			Size:           companyFact("Size"),
			Founded:        companyFact("Founded"),
			Ownership:      companyFact("Type"),
			Industry:       companyFact("Industry"),
			Sector:         companyFact("Sector"),
			Revenue:        companyFact("Revenue"),
			Competitors:    companyFact("Competitors"),
		},
	}
}

// companyFact locates the value next to a labelled entry of the company overview.
func companyFact(label string) Locator {
	return Locator{fmt.Sprintf(".//div[span[text()='%s']]/div", label)}
}

// LoadSelectors overlays the YAML file at path on DefaultSelectors.
// An empty path returns the defaults. Lists left empty in the file keep the default.
func LoadSelectors(path string) (Selectors, error) {
	sel := DefaultSelectors()
	if path == "" {
		return sel, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sel, fmt.Errorf("selectors: read %q: %w", path, err)
	}

	var file Selectors
	if err := yaml.Unmarshal(data, &file); err != nil {
		return sel, fmt.Errorf("selectors: parse %q: %w", path, err)
	}

	sel.merge(file)
	return sel, nil
}

func (s *Selectors) merge(o Selectors) {
	overlay(&s.Listings, o.Listings)
	overlay(&s.DetailPane, o.DetailPane)
	overlay(&s.ModalClose, o.ModalClose)
	overlay(&s.LoadMore, o.LoadMore)
	if o.SeeMoreText != "" {
		s.SeeMoreText = o.SeeMoreText
	}

	f, of := &s.Fields, o.Fields
	overlay(&f.Title, of.Title)
	overlay(&f.Company, of.Company)
	overlay(&f.Location, of.Location)
	overlay(&f.SalaryEstimate, of.SalaryEstimate)
	overlay(&f.Rating, of.Rating)
	overlay(&f.Description, of.Description)
	overlay(&f.Headquarters, of.Headquarters)
	overlay(&f.Size, of.Size)
	overlay(&f.Founded, of.Founded)
	overlay(&f.Ownership, of.Ownership)
	overlay(&f.Industry, of.Industry)
	overlay(&f.Sector, of.Sector)
	overlay(&f.Revenue, of.Revenue)
	overlay(&f.Competitors, of.Competitors)
}

func overlay(dst *Locator, src Locator) {
	if len(src) > 0 {
		*dst = src
	}
}
