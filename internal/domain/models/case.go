// internal/domain/models/case.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Case statuses. Pending is the initial status.
const (
	CaseStatusPending       = "pending"
	CaseStatusActive        = "active"
	CaseStatusInvestigating = "investigating"
	CaseStatusSolved        = "solved"
	CaseStatusClosed        = "closed"
	CaseStatusCold          = "cold"
)

// Case priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var (
	CaseTypes = []string{
		"theft", "assault", "fraud", "vandalism", "drug", "domestic",
		"burglary", "robbery", "murder", "kidnapping", "cybercrime", "other",
	}
	CaseStatuses = []string{
		CaseStatusPending, CaseStatusActive, CaseStatusInvestigating,
		CaseStatusSolved, CaseStatusClosed, CaseStatusCold,
	}
	CasePriorities       = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	ComplainantRelations = []string{"victim", "witness", "reporter", "other"}
	SuspectGenders       = []string{"male", "female", "other", "unknown"}
	SuspectStatuses      = []string{"unknown", "identified", "arrested", "charged"}
	EvidenceTypes        = []string{"document", "image", "video", "audio", "physical"}
)

// Limits on free-text fields.
const (
	MaxNoteLength        = 1000
	MaxReasonLength      = 500
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// IsTerminalStatus reports whether status ends active work on a case.
func IsTerminalStatus(status string) bool {
	return status == CaseStatusClosed || status == CaseStatusSolved
}

type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

type Location struct {
	Address     string       `bson:"address" json:"address"`
	City        string       `bson:"city,omitempty" json:"city,omitempty"`
	State       string       `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode     string       `bson:"zip_code,omitempty" json:"zipCode,omitempty"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Complainant is the person who reported the case (often the victim).
type Complainant struct {
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
	Address      string `bson:"address,omitempty" json:"address,omitempty"`
	Relationship string `bson:"relationship" json:"relationship"`
}

type Suspect struct {
	Name        string `bson:"name,omitempty" json:"name,omitempty"`
	Age         *int   `bson:"age,omitempty" json:"age,omitempty"`
	Gender      string `bson:"gender,omitempty" json:"gender,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Address     string `bson:"address,omitempty" json:"address,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	Status      string `bson:"status" json:"status"`
}

type Witness struct {
	Name      string `bson:"name,omitempty" json:"name,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
	Statement string `bson:"statement,omitempty" json:"statement,omitempty"`
}

type Evidence struct {
	Type        string              `bson:"type" json:"type"`
	Description string              `bson:"description" json:"description"`
	FileName    string              `bson:"file_name,omitempty" json:"fileName,omitempty"`
	FileURL     string              `bson:"file_url,omitempty" json:"fileUrl,omitempty"`
	UploadedBy  *primitive.ObjectID `bson:"uploaded_by,omitempty" json:"uploadedBy,omitempty"`
	UploadedAt  *time.Time          `bson:"uploaded_at,omitempty" json:"uploadedAt,omitempty"`
}

// Note is an append-only remark on a case. Private notes are shown only to
// admins and to their author.
type Note struct {
	ID        string             `bson:"id" json:"id"`
	Content   string             `bson:"content" json:"content"`
	AddedBy   primitive.ObjectID `bson:"added_by" json:"addedBy"`
	AddedAt   time.Time          `bson:"added_at" json:"addedAt"`
	IsPrivate bool               `bson:"is_private" json:"isPrivate"`
}

// FieldChange records one field of an update. From and To hold the
// canonical JSON encoding of the old and new values.
type FieldChange struct {
	Field string `bson:"field" json:"field"`
	From  string `bson:"from" json:"from"`
	To    string `bson:"to" json:"to"`
}

// UpdateLogEntry is one append-only audit record on a case.
type UpdateLogEntry struct {
	UpdatedBy primitive.ObjectID `bson:"updated_by" json:"updatedBy"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
	Changes   []FieldChange      `bson:"changes" json:"changes"`
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Case is an investigative record. It owns every embedded sub-entity; user
// references are lookups only. Version increases on every write and guards
// concurrent updates.
type Case struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID       string             `bson:"case_id" json:"caseId"`
	Title        string             `bson:"title" json:"title"`
	Type         string             `bson:"type" json:"type"`
	SubType      string             `bson:"sub_type,omitempty" json:"subType,omitempty"`
	Status       string             `bson:"status" json:"status"`
	Priority     string             `bson:"priority" json:"priority"`
	IncidentDate time.Time          `bson:"incident_date" json:"incidentDate"`
	ReportedDate time.Time          `bson:"reported_date" json:"reportedDate"`
	Location     Location           `bson:"location" json:"location"`
	Description  string             `bson:"description" json:"description"`
	Complainant  Complainant        `bson:"complainant" json:"complainant"`

	AssignedOfficer     primitive.ObjectID `bson:"assigned_officer" json:"assignedOfficer"`
	AssignedOfficerName string             `bson:"assigned_officer_name" json:"assignedOfficerName"`
	Department          string             `bson:"department,omitempty" json:"department,omitempty"`

	Suspects     []Suspect        `bson:"suspects" json:"suspects"`
	Witnesses    []Witness        `bson:"witnesses" json:"witnesses"`
	Evidence     []Evidence       `bson:"evidence" json:"evidence"`
	RelatedCases []string         `bson:"related_cases" json:"relatedCases"`
	Tags         []string         `bson:"tags" json:"tags"`
	Notes        []Note           `bson:"notes" json:"notes"`
	UpdateLog    []UpdateLogEntry `bson:"update_log" json:"updateLog"`

	ClosedDate    *time.Time          `bson:"closed_date,omitempty" json:"closedDate,omitempty"`
	ClosedBy      *primitive.ObjectID `bson:"closed_by,omitempty" json:"closedBy,omitempty"`
	ClosureReason string              `bson:"closure_reason,omitempty" json:"closureReason,omitempty"`

	CreatedBy primitive.ObjectID `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
	Version   int64              `bson:"version" json:"version"`
}

// Clone returns a deep copy so a workflow can mutate a case without touching
// the value it read.
func (c *Case) Clone() *Case {
	out := *c
	if c.Location.Coordinates != nil {
		coords := *c.Location.Coordinates
		out.Location.Coordinates = &coords
	}
	out.Suspects = append([]Suspect(nil), c.Suspects...)
	out.Witnesses = append([]Witness(nil), c.Witnesses...)
	out.Evidence = append([]Evidence(nil), c.Evidence...)
	out.RelatedCases = append([]string(nil), c.RelatedCases...)
	out.Tags = append([]string(nil), c.Tags...)
	out.Notes = append([]Note(nil), c.Notes...)
	out.UpdateLog = append([]UpdateLogEntry(nil), c.UpdateLog...)
	return &out
}
