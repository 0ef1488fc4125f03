package types

import "time"

type Role string

const (
	RoleVolunteer Role = "volunteer"
	RoleOrganizer Role = "organizer"
)

func (r Role) Valid() bool {
	return r == RoleVolunteer || r == RoleOrganizer
}

type User struct {
	ID               string    `db:"id" json:"id"`
	FirstName        *string   `db:"first_name" json:"first_name"`
	LastName         *string   `db:"last_name" json:"last_name"`
	Email            *string   `db:"email" json:"email"`
	Phone            *string   `db:"phone" json:"phone"`
	Location         *string   `db:"location" json:"location"`
	Role             Role      `db:"role" json:"role"`
	OrganizationName *string   `db:"organization_name" json:"organization_name"`
	ProfileImageURL  *string   `db:"profile_image_url" json:"profile_image_url"`
	Bio              *string   `db:"bio" json:"bio"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
