package casework

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/htmlsanitize"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/domain/models"
)

// CreateInput is the body of a create request.
type CreateInput struct {
	Title           string             `json:"title"`
	Type            string             `json:"type"`
	SubType         string             `json:"subType"`
	Priority        string             `json:"priority"`
	IncidentDate    *DateInput         `json:"incidentDate"`
	ReportedDate    *DateInput         `json:"reportedDate"`
	Location        LocationInput      `json:"location"`
	Description     string             `json:"description"`
	Complainant     models.Complainant `json:"complainant"`
	AssignedOfficer string             `json:"assignedOfficer"`
	Suspects        []models.Suspect   `json:"suspects"`
	Witnesses       []models.Witness   `json:"witnesses"`
	Evidence        []models.Evidence  `json:"evidence"`
	RelatedCases    []string           `json:"relatedCases"`
	Tags            []string           `json:"tags"`
}

// LocationInput accepts either a location object or a bare address string.
type LocationInput struct {
	models.Location
}

func (l *LocationInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var addr string
		if err := json.Unmarshal(b, &addr); err != nil {
			return err
		}
		l.Location = models.Location{Address: addr}
		return nil
	}
	return json.Unmarshal(b, &l.Location)
}

// toCase copies the input into a case. Dates that fail to parse were
// already rejected by the JSON decoder; a missing incident date is
// reported here.
func (in CreateInput) toCase() (models.Case, apierr.ValidationError) {
	var v apierr.ValidationError
	c := models.Case{
		Title:        in.Title,
		Type:         in.Type,
		SubType:      in.SubType,
		Priority:     in.Priority,
		Location:     in.Location.Location,
		Description:  in.Description,
		Complainant:  in.Complainant,
		Suspects:     in.Suspects,
		Witnesses:    in.Witnesses,
		Evidence:     in.Evidence,
		RelatedCases: in.RelatedCases,
		Tags:         in.Tags,
	}
	if in.IncidentDate == nil || in.IncidentDate.IsZero() {
		v.Add("incidentDate", "Incident date is required")
	} else {
		c.IncidentDate = in.IncidentDate.UTC()
	}
	if in.ReportedDate != nil {
		c.ReportedDate = in.ReportedDate.UTC()
	}
	return c, v
}

// prepare normalizes and sanitizes free text in place.
func prepare(c *models.Case) {
	c.Title = htmlsanitize.PlainText(c.Title)
	c.Type = normalize.Status(c.Type)
	c.SubType = htmlsanitize.PlainText(c.SubType)
	c.Status = normalize.Status(c.Status)
	c.Priority = normalize.Status(c.Priority)
	c.Description = htmlsanitize.Sanitize(c.Description)

	c.Location.Address = htmlsanitize.PlainText(c.Location.Address)
	c.Location.City = normalize.Name(c.Location.City)
	c.Location.State = normalize.Name(c.Location.State)
	c.Location.ZipCode = normalize.Name(c.Location.ZipCode)

	c.Complainant.Name = normalize.Name(htmlsanitize.PlainText(c.Complainant.Name))
	c.Complainant.Phone = normalize.Name(c.Complainant.Phone)
	c.Complainant.Email = normalize.Email(c.Complainant.Email)
	c.Complainant.Address = htmlsanitize.PlainText(c.Complainant.Address)
	c.Complainant.Relationship = normalize.Status(c.Complainant.Relationship)
	if c.Complainant.Relationship == "" {
		c.Complainant.Relationship = "victim"
	}

	for i := range c.Suspects {
		sp := &c.Suspects[i]
		sp.Name = normalize.Name(htmlsanitize.PlainText(sp.Name))
		sp.Gender = normalize.Status(sp.Gender)
		sp.Description = htmlsanitize.PlainText(sp.Description)
		sp.Status = normalize.Status(sp.Status)
		if sp.Status == "" {
			sp.Status = "unknown"
		}
	}
	for i := range c.Witnesses {
		w := &c.Witnesses[i]
		w.Name = normalize.Name(htmlsanitize.PlainText(w.Name))
		w.Email = normalize.Email(w.Email)
		w.Statement = htmlsanitize.Sanitize(w.Statement)
	}
	for i := range c.Evidence {
		e := &c.Evidence[i]
		e.Type = normalize.Status(e.Type)
		e.Description = htmlsanitize.PlainText(e.Description)
	}
	related := make([]string, 0, len(c.RelatedCases))
	for _, id := range c.RelatedCases {
		if id = normalize.CaseID(id); id != "" {
			related = append(related, id)
		}
	}
	c.RelatedCases = related
	c.Tags = normalize.Tags(c.Tags)
	c.ClosureReason = htmlsanitize.PlainText(c.ClosureReason)
}

// validate checks a prepared case and records every failure in v.
func validate(c *models.Case, now time.Time, v *apierr.ValidationError) {
	switch {
	case c.Title == "":
		v.Add("title", "Title is required")
	case len([]rune(c.Title)) > models.MaxTitleLength:
		v.Add("title", fmt.Sprintf("Title cannot exceed %d characters", models.MaxTitleLength))
	}
	if !inputval.OneOf(c.Type, models.CaseTypes) {
		v.Add("type", "Invalid case type")
	}
	if !inputval.OneOf(c.Status, models.CaseStatuses) {
		v.Add("status", "Invalid case status")
	}
	if !inputval.OneOf(c.Priority, models.CasePriorities) {
		v.Add("priority", "Invalid priority")
	}
	if !c.IncidentDate.IsZero() && c.IncidentDate.After(now) {
		v.Add("incidentDate", "Incident date cannot be in the future")
	}
	if c.Location.Address == "" {
		v.Add("location", "Location address is required")
	}
	if co := c.Location.Coordinates; co != nil {
		if co.Latitude < -90 || co.Latitude > 90 || co.Longitude < -180 || co.Longitude > 180 {
			v.Add("location", "Coordinates are out of range")
		}
	}
	switch {
	case c.Description == "":
		v.Add("description", "Description is required")
	case len([]rune(c.Description)) > models.MaxDescriptionLength:
		v.Add("description", fmt.Sprintf("Description cannot exceed %d characters", models.MaxDescriptionLength))
	}

	switch {
	case c.Complainant.Name == "":
		v.Add("complainant", "Complainant name is required")
	case c.Complainant.Phone == "":
		v.Add("complainant", "Complainant phone is required")
	case c.Complainant.Email != "" && !inputval.IsValidEmail(c.Complainant.Email):
		v.Add("complainant", "Complainant email is invalid")
	case !inputval.OneOf(c.Complainant.Relationship, models.ComplainantRelations):
		v.Add("complainant", "Invalid complainant relationship")
	}

	for _, sp := range c.Suspects {
		if sp.Gender != "" && !inputval.OneOf(sp.Gender, models.SuspectGenders) {
			v.Add("suspects", "Invalid suspect gender")
			break
		}
		if !inputval.OneOf(sp.Status, models.SuspectStatuses) {
			v.Add("suspects", "Invalid suspect status")
			break
		}
		if sp.Age != nil && (*sp.Age < 0 || *sp.Age > 150) {
			v.Add("suspects", "Suspect age must be between 0 and 150")
			break
		}
	}
	for _, w := range c.Witnesses {
		if w.Email != "" && !inputval.IsValidEmail(w.Email) {
			v.Add("witnesses", "Witness email is invalid")
			break
		}
	}
	for _, e := range c.Evidence {
		if !inputval.OneOf(e.Type, models.EvidenceTypes) {
			v.Add("evidence", "Invalid evidence type")
			break
		}
		if e.FileURL != "" && !inputval.IsValidHTTPURL(e.FileURL) {
			v.Add("evidence", "Evidence file URL must be http or https")
			break
		}
	}
	if len([]rune(c.ClosureReason)) > models.MaxReasonLength {
		v.Add("closureReason", fmt.Sprintf("Closure reason cannot exceed %d characters", models.MaxReasonLength))
	}
}

// DateInput accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type DateInput struct {
	time.Time
}

func (d *DateInput) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}
