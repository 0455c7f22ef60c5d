package pipeline

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-jd2pdf/internal/dateutil"
	"github.com/alnah/go-jd2pdf/internal/jobfmt"
)

// Job is the builder's view of a job record. Values are already decoded;
// formatting and fallbacks happen in NewPageData.
type Job struct {
	Title            string
	Description      string
	Requirements     string
	Responsibilities string
	JobType          string
	Location         []string
	Industry         string

	RemoteWork     *bool
	TravelRequired *bool
	OnsiteOffice   *bool

	SalaryMin      *float64
	SalaryMax      *float64
	SalaryCurrency string
	ExperienceMin  *float64
	ExperienceMax  *float64

	EducationLevel  []string
	EducationDegree []string
	EducationBranch []string

	Skills              []string
	SelectionProcess    string
	ApplicationDeadline *time.Time
	CampusDriveDate     *time.Time
	CreatedAt           *time.Time
	Openings            *int

	Perks             string
	Eligibility       string
	ServiceAgreement  string
	CTCWithProbation  string
	CTCAfterProbation string
}

// Company is the builder's view of a company profile.
type Company struct {
	Name               string
	Email              string
	Website            string
	Industry           string
	Size               string
	FoundedYear        *int
	Description        string
	Type               string
	Verified           bool
	ContactPerson      string
	ContactDesignation string
	Address            string
}

// Options tune the view model.
type Options struct {
	DateFormat          string   // dateutil format; default DD MMM YYYY
	TimestampFormat     string   // footer timestamp; default DD MMM YYYY, HH:mm
	DefaultCurrency     string   // used when the job has no currency
	FallbackPerks       []string // shown when the job lists no perks
	FallbackEligibility []string // shown when the job lists no criteria
}

// DefaultPerks are shown when a job lists no perks.
var DefaultPerks = []string{
	"Competitive salary with performance-based increments",
	"Health insurance for employees and dependents",
	"Flexible working hours and paid time off",
	"Learning and development budget",
	"Collaborative and inclusive work culture",
}

// DefaultEligibility is shown when a job lists no eligibility criteria.
var DefaultEligibility = []string{
	"Graduates from a recognized university in a relevant discipline",
	"Strong communication and interpersonal skills",
	"Ability to work independently and in a team",
	"Basic knowledge of the tools used in the role",
	"Willingness to learn and adapt to new technologies",
}

// PlaceholderCompanyName is used in the header and footer without a profile.
const PlaceholderCompanyName = "Company"

// placeholderAbout describes an anonymous employer.
const placeholderAbout = "This position is offered by a growing organization committed to " +
	"building great products and developing its people. Detailed company " +
	"information will be shared during the selection process."

// Field is one label/value cell of an info grid.
type Field struct {
	Label string
	Value string
}

// List is a bullet list that may hold generic fallback items.
type List struct {
	Items    []string
	Fallback bool
}

// CompanyView is the company block of the first page.
type CompanyView struct {
	Name        string
	About       string
	Facts       []Field
	Verified    bool
	Placeholder bool
}

// FooterView is repeated at the bottom of every page.
type FooterView struct {
	Year      int
	Company   string
	Generated string
	Contact   string
}

// PageData is the template view model. Every string is final display text.
type PageData struct {
	Title       string
	Logo        template.URL // inline data URL; empty renders the placeholder box
	Company     CompanyView
	Overview    []Field
	Probation   []Field
	Description string // Markdown/HTML source, rendered by the Builder

	Requirements     []string
	Skills           []string
	SkillColumns     int
	Responsibilities []string
	Education        []Field

	Operations       []Field
	Perks            List
	Eligibility      List
	SelectionProcess []string
	ServiceAgreement string
	Dates            []Field

	Footer FooterView
}

// NewPageData maps a job, an optional company and an optional inline logo
// into display values. now stamps the footer.
func NewPageData(job Job, company *Company, logoDataURL string, now time.Time, opts Options) PageData {
	opts = opts.withDefaults()

	currency := strings.TrimSpace(job.SalaryCurrency)
	if currency == "" {
		currency = opts.DefaultCurrency
	}

	data := PageData{
		Title: strings.TrimSpace(job.Title),
		// #nosec G203 -- only data:image URLs reach here
		Logo:    template.URL(logoDataURL),
		Company: companyView(company),
		Overview: []Field{
			{"Job Type", jobfmt.JobType(job.JobType)},
			{"Location", jobfmt.ValueOr(job.Location, jobfmt.NotSpecified)},
			{"Salary", jobfmt.Salary(job.SalaryMin, job.SalaryMax, currency)},
			{"Experience", jobfmt.Experience(job.ExperienceMin, job.ExperienceMax)},
			{"Industry", jobfmt.TextOr(job.Industry, jobfmt.NotSpecified)},
		},
		Probation:   probationFields(job),
		Description: job.Description,

		Requirements:     bullets(job.Requirements),
		Skills:           jobfmt.Skills(job.Skills),
		Responsibilities: bullets(job.Responsibilities),
		Education: []Field{
			{"Education Level", jobfmt.ValueOr(job.EducationLevel, jobfmt.NotSpecified)},
			{"Degree", jobfmt.ValueOr(job.EducationDegree, jobfmt.NotSpecified)},
			{"Branch", jobfmt.ValueOr(job.EducationBranch, jobfmt.NotSpecified)},
		},

		Operations: []Field{
			{"Remote Work", jobfmt.YesNo(job.RemoteWork)},
			{"Onsite Office", jobfmt.YesNo(job.OnsiteOffice)},
			{"Travel Required", jobfmt.YesNo(job.TravelRequired)},
			{"Number of Openings", jobfmt.Count(job.Openings)},
		},
		Perks:            listOr(bullets(job.Perks), opts.FallbackPerks),
		Eligibility:      listOr(bullets(job.Eligibility), opts.FallbackEligibility),
		SelectionProcess: bullets(job.SelectionProcess),
		ServiceAgreement: strings.TrimSpace(PlainText(job.ServiceAgreement)),
		Dates: []Field{
			{"Application Deadline", dateOr(job.ApplicationDeadline, opts.DateFormat)},
			{"Campus Drive Date", dateOr(job.CampusDriveDate, opts.DateFormat)},
			{"Posted On", dateOr(job.CreatedAt, opts.DateFormat)},
		},
	}
	data.SkillColumns = jobfmt.SkillColumns(len(data.Skills))
	data.Footer = FooterView{
		Year:      now.Year(),
		Company:   data.Company.Name,
		Generated: dateutil.Format(now, opts.TimestampFormat),
		Contact:   contactLine(company),
	}
	return data
}

func (o Options) withDefaults() Options {
	if o.DateFormat == "" {
		o.DateFormat = dateutil.DefaultDateFormat
	}
	if o.TimestampFormat == "" {
		o.TimestampFormat = dateutil.DefaultTimestampFormat
	}
	if len(o.FallbackPerks) == 0 {
		o.FallbackPerks = DefaultPerks
	}
	if len(o.FallbackEligibility) == 0 {
		o.FallbackEligibility = DefaultEligibility
	}
	return o
}

func companyView(c *Company) CompanyView {
	if c == nil || strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Description) == "" {
		return CompanyView{
			Name:        PlaceholderCompanyName,
			About:       placeholderAbout,
			Placeholder: true,
			Facts: []Field{
				{"Industry", jobfmt.NotAvailable},
				{"Company Size", jobfmt.NotAvailable},
				{"Founded", jobfmt.NotAvailable},
				{"Company Type", jobfmt.NotAvailable},
			},
		}
	}

	founded := jobfmt.NotAvailable
	if c.FoundedYear != nil && *c.FoundedYear > 0 {
		founded = strconv.Itoa(*c.FoundedYear)
	}

	view := CompanyView{
		Name:     jobfmt.TextOr(c.Name, PlaceholderCompanyName),
		About:    jobfmt.TextOr(PlainText(c.Description), placeholderAbout),
		Verified: c.Verified,
		Facts: []Field{
			{"Industry", jobfmt.TextOr(c.Industry, jobfmt.NotAvailable)},
			{"Company Size", jobfmt.TextOr(c.Size, jobfmt.NotAvailable)},
			{"Founded", founded},
			{"Company Type", jobfmt.TextOr(c.Type, jobfmt.NotAvailable)},
		},
	}
	if contact := contactPerson(c); contact != "" {
		view.Facts = append(view.Facts, Field{"Contact", contact})
	}
	if addr := strings.TrimSpace(c.Address); addr != "" {
		view.Facts = append(view.Facts, Field{"Address", addr})
	}
	return view
}

func contactPerson(c *Company) string {
	person := strings.TrimSpace(c.ContactPerson)
	role := strings.TrimSpace(c.ContactDesignation)
	switch {
	case person != "" && role != "":
		return person + ", " + role
	case person != "":
		return person
	default:
		return ""
	}
}

// contactLine joins website and email for the footer.
func contactLine(c *Company) string {
	if c == nil {
		return ""
	}
	var parts []string
	if w := strings.TrimSpace(c.Website); w != "" {
		parts = append(parts, w)
	}
	if e := strings.TrimSpace(c.Email); e != "" {
		parts = append(parts, e)
	}
	return strings.Join(parts, " | ")
}

// probationFields lists only the pay lines that are present.
func probationFields(job Job) []Field {
	var fields []Field
	if v := strings.TrimSpace(job.CTCWithProbation); v != "" {
		fields = append(fields, Field{"CTC During Probation", v})
	}
	if v := strings.TrimSpace(job.CTCAfterProbation); v != "" {
		fields = append(fields, Field{"CTC After Probation", v})
	}
	return fields
}

func bullets(text string) []string {
	return jobfmt.Bullets(PlainText(text))
}

func listOr(items, fallback []string) List {
	if len(items) > 0 {
		return List{Items: items}
	}
	return List{Items: fallback, Fallback: true}
}

func dateOr(t *time.Time, format string) string {
	if t == nil || t.IsZero() {
		return jobfmt.NotAvailable
	}
	return dateutil.Format(*t, format)
}
