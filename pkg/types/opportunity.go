package types

import "time"

type Opportunity struct {
	ID               string     `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	OrganizationName *string    `db:"organization_name" json:"organization_name"`
	CategoryID       *string    `db:"category_id" json:"category_id"`
	Description      *string    `db:"description" json:"description"`
	Location         *string    `db:"location" json:"location"`
	Date             *time.Time `db:"date" json:"date"`
	StartTime        *string    `db:"start_time" json:"start_time"`
	EndTime          *string    `db:"end_time" json:"end_time"`
	MaximumVolunteer *int       `db:"maximum_volunteer" json:"maximum_volunteer"`
	ContactEmail     *string    `db:"contact_email" json:"contact_email"`
	Photo            *string    `db:"photo" json:"photo"`
	CreatorID        string     `db:"creator_id" json:"creator_id"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// OpportunityDetail is an opportunity with the skills its creator expects.
type OpportunityDetail struct {
	*Opportunity
	Skills []*Skill `json:"skills"`
}
