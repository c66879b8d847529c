// Package types provides type definitions for structured data used throughout jdstudio.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DefaultExportName is the document name used when a job description has no title.
const DefaultExportName = "JobDescription"

// JobForm is the recruiter's job-description form.
type JobForm struct {
	Title          string   `json:"title" validate:"required"`
	Domain         string   `json:"domain,omitempty"`
	Qualification  string   `json:"qualification,omitempty"`
	Location       string   `json:"location" validate:"required"`
	EmploymentType string   `json:"employment_type,omitempty"`
	Experience     string   `json:"experience,omitempty"` // Free text; its leading integer is sent as years
	Positions      int      `json:"positions" validate:"min=1"`
	SalaryRange    string   `json:"salary_range,omitempty"` // e.g. "5-8 LPA"
	Skills         []string `json:"skills" validate:"min=1,dive,required"`
}

// NewJobForm returns an empty form with one open position.
func NewJobForm() *JobForm {
	return &JobForm{Positions: 1, Skills: []string{}}
}

// Validate validates the JobForm using the validator.
func (f *JobForm) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}

// AddSkill appends a trimmed skill unless it is blank or already listed.
// Returns true if the skill was added.
func (f *JobForm) AddSkill(skill string) bool {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return false
	}
	for _, s := range f.Skills {
		if s == skill {
			return false
		}
	}
	f.Skills = append(f.Skills, skill)
	return true
}

// RemoveSkill removes the skill at index. Out-of-range indexes are ignored.
func (f *JobForm) RemoveSkill(index int) {
	if index < 0 || index >= len(f.Skills) {
		return
	}
	f.Skills = append(f.Skills[:index:index], f.Skills[index+1:]...)
}

// ApplyUpload fills the form from a job description parsed out of an uploaded PDF.
// The recruiter's position count is kept since uploads never carry one.
func (f *JobForm) ApplyUpload(jd *JobDescription) {
	if jd == nil {
		return
	}
	f.Title = jd.Title
	f.Domain = jd.Domain
	f.Qualification = jd.Qualification
	f.Location = jd.Location
	f.EmploymentType = jd.EmploymentType
	f.Experience = string(jd.Experience)
	f.SalaryRange = jd.SalaryRange
	f.Skills = append([]string{}, jd.Skills...)
}

// GenerateRequest builds the payload the backend's generate endpoint expects.
func (f *JobForm) GenerateRequest() GenerateRequest {
	return GenerateRequest{
		Title:          f.Title,
		Domain:         f.Domain,
		Qualification:  f.Qualification,
		Experience:     leadingInt(f.Experience),
		Skills:         append([]string{}, f.Skills...),
		Location:       f.Location,
		EmploymentType: f.EmploymentType,
		SalaryRange:    f.SalaryRange,
	}
}

// ExportFilename returns the PDF file name for this form's job description.
func (f *JobForm) ExportFilename() string {
	return ExportFilename(f.Title)
}

// ExportFilename returns "<title>.pdf", falling back to the default name for a blank title.
func ExportFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultExportName
	}
	return title + ".pdf"
}

// GenerateRequest is the body of POST /api/jd/generate.
// The backend reads the qualification under a capitalised key.
type GenerateRequest struct {
	Title          string   `json:"title"`
	Domain         string   `json:"domain"`
	Qualification  string   `json:"Qualification"`
	Experience     *int     `json:"experience"`
	Skills         []string `json:"skills"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"employmentType"`
	SalaryRange    string   `json:"salaryRange"`
}

// JobDescription is a generated or extracted job description as returned by the backend.
type JobDescription struct {
	Title          string     `json:"title"`
	Domain         string     `json:"domain,omitempty"`
	Qualification  string     `json:"qualification,omitempty"`
	Location       string     `json:"location,omitempty"`
	EmploymentType string     `json:"employmentType,omitempty"`
	Experience     FlexString `json:"experience,omitempty"`
	SalaryRange    string     `json:"salaryRange,omitempty"`
	Skills         []string   `json:"skills,omitempty"`
	FullJD         string     `json:"fullJD"`
}

// JDEnvelope wraps every job-description response from the backend.
type JDEnvelope struct {
	JD      *JobDescription `json:"jd"`
	Message string          `json:"message,omitempty"`
}

// FlexString accepts a JSON string, number or null and keeps its text form.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("experience must be a string or number: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

// leadingInt parses the integer at the start of s, ignoring leading spaces,
// so "3 years" gives 3. Returns nil when s does not start with a digit.
func leadingInt(s string) *int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &n
}
