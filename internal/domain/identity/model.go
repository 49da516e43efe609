package identity

import (
	"time"

	"github.com/google/uuid"
)

// Identity maps to the identities table. The secret hash never leaves the
// service layer; json:"-" keeps it out of every response.
type Identity struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	LoginID    string     `db:"login_id" json:"login_id"`
	SecretHash string     `db:"secret_hash" json:"-"`
	Superuser  bool       `db:"superuser" json:"superuser"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	LastLogin  *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// Doctor availability statuses.
const (
	StatusInSession = "in-session"
	StatusOffDuty   = "off-duty"
	StatusOnLeave   = "on-leave"
)

// DoctorProfile maps to the doctor_profiles table, 1-1 with Identity. It is
// created by provisioning and removed only by deprovisioning.
type DoctorProfile struct {
	IdentityID       uuid.UUID `db:"identity_id" json:"identity_id"`
	Name             string    `db:"name" json:"name"`
	Sex              string    `db:"sex" json:"sex"`
	Phone            *string   `db:"phone" json:"phone,omitempty"`
	Email            *string   `db:"email" json:"email,omitempty"`
	Status           string    `db:"status" json:"status"`
	ProfileImagePath *string   `db:"profile_image_path" json:"profile_image_path,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Account is an identity together with its profile, as returned by the
// current-identity endpoint and the admin listing.
type Account struct {
	Identity Identity       `json:"identity"`
	Profile  *DoctorProfile `json:"profile,omitempty"`
}
