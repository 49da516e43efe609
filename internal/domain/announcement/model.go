package announcement

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a notice posted through the admin console. Doctors only
// see active ones.
type Announcement struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
