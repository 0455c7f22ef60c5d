package jd2pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-jd2pdf/internal/dateutil"
	"github.com/alnah/go-jd2pdf/internal/pipeline"
)

// Job is a job record as served by the upstream REST API. Only Title and
// Description are required; every other field may be absent.
type Job struct {
	ID               json.RawMessage `json:"id,omitempty"`
	Title            string          `json:"title" validate:"required,max=300"`
	Description      string          `json:"description" validate:"required,max=100000"`
	Requirements     string          `json:"requirements,omitempty" validate:"max=50000"`
	Responsibilities string          `json:"responsibilities,omitempty" validate:"max=50000"`
	JobType          string          `json:"job_type,omitempty" validate:"max=100"`
	Location         StringList      `json:"location,omitempty" validate:"max=50,dive,max=200"`
	Industry         string          `json:"industry,omitempty" validate:"max=200"`

	RemoteWork     *bool `json:"remote_work,omitempty"`
	TravelRequired *bool `json:"travel_required,omitempty"`
	OnsiteOffice   *bool `json:"onsite_office,omitempty"`

	SalaryMin      Decimal `json:"salary_min,omitzero" validate:"omitempty,gte=0"`
	SalaryMax      Decimal `json:"salary_max,omitzero" validate:"omitempty,gte=0"`
	SalaryCurrency string  `json:"salary_currency,omitempty" validate:"max=10"`
	ExperienceMin  Decimal `json:"experience_min,omitzero" validate:"omitempty,gte=0"`
	ExperienceMax  Decimal `json:"experience_max,omitzero" validate:"omitempty,gte=0"`

	EducationLevel  StringList `json:"education_level,omitempty" validate:"max=50,dive,max=200"`
	EducationDegree StringList `json:"education_degree,omitempty" validate:"max=50,dive,max=200"`
	EducationBranch StringList `json:"education_branch,omitempty" validate:"max=50,dive,max=200"`

	Skills              StringList `json:"skills_required,omitempty" validate:"max=200,dive,max=200"`
	SelectionProcess    string     `json:"selection_process,omitempty" validate:"max=20000"`
	ApplicationDeadline Date       `json:"application_deadline,omitzero"`
	CampusDriveDate     Date       `json:"campus_drive_date,omitzero"`
	CreatedAt           Date       `json:"created_at,omitzero"`
	Openings            *int       `json:"number_of_openings,omitempty" validate:"omitempty,gte=0"`

	Perks             string `json:"perks_and_benefits,omitempty" validate:"max=20000"`
	Eligibility       string `json:"eligibility_criteria,omitempty" validate:"max=20000"`
	ServiceAgreement  string `json:"service_agreement_details,omitempty" validate:"max=20000"`
	CTCWithProbation  string `json:"ctc_with_probation,omitempty" validate:"max=200"`
	CTCAfterProbation string `json:"ctc_after_probation,omitempty" validate:"max=200"`
}

// Company is an employer profile. The whole profile is optional.
type Company struct {
	Name               string `json:"company_name,omitempty" validate:"max=300"`
	Email              string `json:"company_email,omitempty" validate:"max=320"`
	Website            string `json:"website_url,omitempty" validate:"max=2048"`
	Industry           string `json:"industry,omitempty" validate:"max=200"`
	Size               string `json:"company_size,omitempty" validate:"max=100"`
	FoundedYear        *int   `json:"founded_year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Description        string `json:"description,omitempty" validate:"max=50000"`
	Type               string `json:"company_type,omitempty" validate:"max=100"`
	Logo               string `json:"company_logo,omitempty" validate:"max=8000000"`
	Verified           bool   `json:"verified,omitempty"`
	ContactPerson      string `json:"contact_person,omitempty" validate:"max=200"`
	ContactDesignation string `json:"contact_designation,omitempty" validate:"max=200"`
	Address            string `json:"address,omitempty" validate:"max=1000"`
}

// Input is one generation request.
type Input struct {
	Job     Job      `json:"job"`
	Company *Company `json:"company,omitempty"`
}

// LogoPlaceholder is Document.Logo when no strategy produced an image.
const LogoPlaceholder = "placeholder"

// Document is a generated job description.
type Document struct {
	PDF      []byte
	HTML     []byte // markup the PDF was rendered from
	Filename string // suggested download name
	Pages    int
	Logo     string // strategy that produced the logo, or LogoPlaceholder
	Overflow []int  // 1-based pages whose content was clipped at the page edge
}

// ---------------------------------------------------------------------------
// Tolerant JSON value types
// ---------------------------------------------------------------------------

// StringList decodes a JSON array of strings, a single string, or null.
// Non-string array items are kept in their JSON text form.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			r = bytes.TrimSpace(r)
			if bytes.Equal(r, []byte("null")) {
				continue
			}
			var item string
			if err := json.Unmarshal(r, &item); err != nil {
				item = string(r)
			}
			items = append(items, item)
		}
		*s = items
		return nil
	default:
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return fmt.Errorf("string list: %w", err)
		}
		if strings.TrimSpace(one) == "" {
			*s = nil
		} else {
			*s = StringList{one}
		}
		return nil
	}
}

// Decimal is an optional number that upstream serializes either as a JSON
// number or as a numeric string. The zero value is absent.
type Decimal struct {
	value float64
	valid bool
}

// NewDecimal returns a present Decimal.
func NewDecimal(v float64) Decimal {
	return Decimal{value: v, valid: true}
}

// Float64 returns the value and whether it is present.
func (d Decimal) Float64() (float64, bool) {
	return d.value, d.valid
}

func (d Decimal) ptr() *float64 {
	if !d.valid {
		return nil
	}
	v := d.value
	return &v
}

// UnmarshalJSON implements json.Unmarshaler. Empty, non-numeric and
// non-finite ("NaN", "Inf") strings decode as absent.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	*d = Decimal{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*d = NewDecimal(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decimal: %w", err)
	}
	*d = NewDecimal(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.value)
}

// IsZero reports absence, so omitzero skips it when encoding.
func (d Decimal) IsZero() bool { return !d.valid }

// Date is an optional calendar date. It decodes YYYY-MM-DD and RFC 3339
// strings; empty, null and unparseable values decode as absent.
type Date struct {
	t time.Time
}

// NewDate returns a present Date.
func NewDate(t time.Time) Date {
	return Date{t: t}
}

// Time returns the date and whether it is present.
func (d Date) Time() (time.Time, bool) {
	return d.t, !d.t.IsZero()
}

func (d Date) ptr() *time.Time {
	if d.t.IsZero() {
		return nil
	}
	t := d.t
	return &t
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	*d = Date{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if t, err := dateutil.Parse(s); err == nil {
		d.t = t
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(time.RFC3339))
}

// IsZero reports absence.
func (d Date) IsZero() bool { return d.t.IsZero() }

// ---------------------------------------------------------------------------
// Conversion to the builder's view
// ---------------------------------------------------------------------------

func (j *Job) toPipeline() pipeline.Job {
	return pipeline.Job{
		Title:            j.Title,
		Description:      j.Description,
		Requirements:     j.Requirements,
		Responsibilities: j.Responsibilities,
		JobType:          j.JobType,
		Location:         j.Location,
		Industry:         j.Industry,

		RemoteWork:     j.RemoteWork,
		TravelRequired: j.TravelRequired,
		OnsiteOffice:   j.OnsiteOffice,

		SalaryMin:      j.SalaryMin.ptr(),
		SalaryMax:      j.SalaryMax.ptr(),
		SalaryCurrency: j.SalaryCurrency,
		ExperienceMin:  j.ExperienceMin.ptr(),
		ExperienceMax:  j.ExperienceMax.ptr(),

		EducationLevel:  j.EducationLevel,
		EducationDegree: j.EducationDegree,
		EducationBranch: j.EducationBranch,

		Skills:              j.Skills,
		SelectionProcess:    j.SelectionProcess,
		ApplicationDeadline: j.ApplicationDeadline.ptr(),
		CampusDriveDate:     j.CampusDriveDate.ptr(),
		CreatedAt:           j.CreatedAt.ptr(),
		Openings:            j.Openings,

		Perks:             j.Perks,
		Eligibility:       j.Eligibility,
		ServiceAgreement:  j.ServiceAgreement,
		CTCWithProbation:  j.CTCWithProbation,
		CTCAfterProbation: j.CTCAfterProbation,
	}
}

func (c *Company) toPipeline() *pipeline.Company {
	if c == nil {
		return nil
	}
	return &pipeline.Company{
		Name:               c.Name,
		Email:              c.Email,
		Website:            c.Website,
		Industry:           c.Industry,
		Size:               c.Size,
		FoundedYear:        c.FoundedYear,
		Description:        c.Description,
		Type:               c.Type,
		Verified:           c.Verified,
		ContactPerson:      c.ContactPerson,
		ContactDesignation: c.ContactDesignation,
		Address:            c.Address,
	}
}

func (c *Company) logoURL() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Logo)
}
