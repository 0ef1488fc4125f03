package types

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

type Application struct {
	ID                    string            `db:"id" json:"id"`
	OpportunityID         string            `db:"opportunity_id" json:"opportunity_id"`
	VolunteerID           string            `db:"volunteer_id" json:"volunteer_id"`
	Motivation            string            `db:"motivation" json:"motivation"`
	RelevantExperience    *string           `db:"relevant_experience" json:"relevant_experience"`
	EmergencyContactName  string            `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone string            `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	ResumeFileURL         *string           `db:"resume_file_url" json:"resume_file_url"`
	ResumeStorageKey      *string           `db:"resume_storage_key" json:"-"`
	Status                ApplicationStatus `db:"status" json:"status"`
	AppliedAt             time.Time         `db:"applied_at" json:"applied_at"`
	ReviewedAt            *time.Time        `db:"reviewed_at" json:"reviewed_at"`
	ReviewedBy            *string           `db:"reviewed_by" json:"reviewed_by"`
}

// VolunteerApplication is an application joined with the summary fields of
// the opportunity it was submitted to.
type VolunteerApplication struct {
	Application

	OpportunityTitle    string     `db:"opportunity_title" json:"opportunity_title"`
	OrganizationName    *string    `db:"organization_name" json:"organization_name"`
	OpportunityDate     *time.Time `db:"opportunity_date" json:"opportunity_date"`
	OpportunityLocation *string    `db:"opportunity_location" json:"opportunity_location"`
}

// OrganizationApplication is the organizer-facing view of one application.
type OrganizationApplication struct {
	Application *Application `json:"application"`
	Volunteer   *User        `json:"volunteer"`
	Opportunity *Opportunity `json:"opportunity"`
}
