package jd2pdf

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// upstreamJob is shaped like a record from the job API: decimals as
// strings, a bare location string, naive timestamps.
const upstreamJob = `{
	"id": 42,
	"title": "Backend Engineer",
	"description": "Build **APIs**.",
	"job_type": "full_time",
	"location": "Bengaluru",
	"remote_work": true,
	"travel_required": null,
	"salary_min": "500000.00",
	"salary_max": 900000,
	"experience_min": "0",
	"experience_max": "3",
	"education_degree": ["B.Tech", "M.Tech"],
	"skills_required": ["Go", "SQL", null, 3],
	"application_deadline": "2026-04-30",
	"campus_drive_date": "",
	"created_at": "2026-03-01T10:15:00Z",
	"number_of_openings": 5
}`

func decodeJob(t *testing.T, raw string) Job {
	t.Helper()
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return job
}

func TestJob_UnmarshalUpstream(t *testing.T) {
	t.Parallel()

	job := decodeJob(t, upstreamJob)

	if string(job.ID) != "42" {
		t.Errorf("ID = %s", job.ID)
	}
	if len(job.Location) != 1 || job.Location[0] != "Bengaluru" {
		t.Errorf("Location = %v", job.Location)
	}
	if job.RemoteWork == nil || !*job.RemoteWork || job.TravelRequired != nil {
		t.Errorf("RemoteWork = %v, TravelRequired = %v", job.RemoteWork, job.TravelRequired)
	}
	if v, ok := job.SalaryMin.Float64(); !ok || v != 500000 {
		t.Errorf("SalaryMin = %v, %v", v, ok)
	}
	if v, ok := job.SalaryMax.Float64(); !ok || v != 900000 {
		t.Errorf("SalaryMax = %v, %v", v, ok)
	}
	if v, ok := job.ExperienceMin.Float64(); !ok || v != 0 {
		t.Errorf("ExperienceMin = %v, %v (an explicit zero is present)", v, ok)
	}
	if strings.Join(job.Skills, ",") != "Go,SQL,3" {
		t.Errorf("Skills = %v", job.Skills)
	}
	if d, ok := job.ApplicationDeadline.Time(); !ok || d.Format("2006-01-02") != "2026-04-30" {
		t.Errorf("ApplicationDeadline = %v, %v", d, ok)
	}
	if _, ok := job.CampusDriveDate.Time(); ok {
		t.Error("empty campus_drive_date should be absent")
	}
	if job.Openings == nil || *job.Openings != 5 {
		t.Errorf("Openings = %v", job.Openings)
	}
}

func TestStringList_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"array", `["Pune","Delhi"]`, []string{"Pune", "Delhi"}, false},
		{"single string", `"Pune"`, []string{"Pune"}, false},
		{"blank string", `"  "`, nil, false},
		{"null", `null`, nil, false},
		{"empty array", `[]`, []string{}, false},
		{"null items dropped", `["Go", null, "SQL", 3]`, []string{"Go", "SQL", "3"}, false},
		{"object", `{"city":"Pune"}`, nil, true},
		{"number", `7`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got StringList
			err := json.Unmarshal([]byte(tt.in), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || (got == nil) != (tt.want == nil) {
				t.Errorf("Unmarshal(%s) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecimal_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		want      float64
		wantValid bool
		wantErr   bool
	}{
		{`1200.50`, 1200.5, true, false},
		{`"1200.50"`, 1200.5, true, false},
		{`" 7 "`, 7, true, false},
		{`""`, 0, false, false},
		{`"n/a"`, 0, false, false},
		{`null`, 0, false, false},
		{`"NaN"`, 0, false, false},
		{`"Inf"`, 0, false, false},
		{`"-Infinity"`, 0, false, false},
		{`true`, 0, false, true},
	}
	for _, tt := range tests {
		var d Decimal
		err := json.Unmarshal([]byte(tt.in), &d)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if v, ok := d.Float64(); v != tt.want || ok != tt.wantValid {
			t.Errorf("Unmarshal(%s) = %v, %v, want %v, %v", tt.in, v, ok, tt.want, tt.wantValid)
		}
	}

	out, err := json.Marshal(struct {
		A Decimal `json:"a"`
		B Decimal `json:"b,omitzero"`
	}{A: NewDecimal(2.5)})
	if err != nil || string(out) != `{"a":2.5}` {
		t.Errorf("Marshal() = %s, %v", out, err)
	}
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`"2026-04-30"`, "2026-04-30", false},
		{`"2026-04-30T09:00:00+05:30"`, "2026-04-30", false},
		{`"2026-04-30 09:00:00"`, "2026-04-30", false},
		{`"soon"`, "", false},
		{`""`, "", false},
		{`null`, "", false},
		{`20260430`, "", true},
	}
	for _, tt := range tests {
		var d Date
		err := json.Unmarshal([]byte(tt.in), &d)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		got := ""
		if v, ok := d.Time(); ok {
			got = v.Format("2006-01-02")
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}

	out, err := json.Marshal(NewDate(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)))
	if err != nil || string(out) != `"2026-04-30T00:00:00Z"` {
		t.Errorf("Marshal() = %s, %v", out, err)
	}
}

func TestInput_Validate(t *testing.T) {
	t.Parallel()

	negative := -1
	tests := []struct {
		name    string
		in      Input
		wantErr string // substring; empty means valid
	}{
		{"minimal", Input{Job: Job{Title: "SRE", Description: "Keep it up."}}, ""},
		{"missing title", Input{Job: Job{Description: "x"}}, "job.title is required"},
		{"blank title", Input{Job: Job{Title: "  ", Description: "x"}}, "job.title is required"},
		{"missing description", Input{Job: Job{Title: "SRE"}}, "job.description is required"},
		{"title too long", Input{Job: Job{Title: strings.Repeat("a", 301), Description: "x"}}, "job.title exceeds 300"},
		{"negative salary", Input{Job: Job{Title: "x", Description: "x", SalaryMin: NewDecimal(-5)}}, "job.salary_min must be at least 0"},
		{"negative openings", Input{Job: Job{Title: "x", Description: "x", Openings: &negative}}, "job.number_of_openings must be at least 0"},
		{"zero salary is fine", Input{Job: Job{Title: "x", Description: "x", SalaryMin: NewDecimal(0)}}, ""},
		{"absent salary is fine", Input{Job: Job{Title: "x", Description: "x"}}, ""},
		{"company field too long", Input{
			Job:     Job{Title: "x", Description: "x"},
			Company: &Company{Name: strings.Repeat("c", 301)},
		}, "company.company_name exceeds 300"},
		{"empty company is fine", Input{Job: Job{Title: "x", Description: "x"}, Company: &Company{}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.in.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate() error = %v, want ErrInvalidInput", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestInput_UnmarshalEnvelope(t *testing.T) {
	t.Parallel()

	raw := `{"job":` + upstreamJob + `,"company":{"company_name":"Acme","founded_year":2001,"verified":true}}`
	var in Input
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if in.Company == nil || in.Company.Name != "Acme" || !in.Company.Verified {
		t.Errorf("Company = %+v", in.Company)
	}
	if err := in.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	pc := in.Company.toPipeline()
	if pc.FoundedYear == nil || *pc.FoundedYear != 2001 {
		t.Errorf("toPipeline().FoundedYear = %v", pc.FoundedYear)
	}
	pj := in.Job.toPipeline()
	if pj.SalaryMin == nil || *pj.SalaryMin != 500000 || pj.CampusDriveDate != nil {
		t.Errorf("toPipeline() salary/date mapping wrong: %+v", pj)
	}
}
