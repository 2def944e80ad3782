package competitions

import "time"

// Competition is a scheduled contest, optionally hosted by a club.
type Competition struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ClubID      *int64    `json:"club_id,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input is the payload of POST /competitions and PUT /competitions/{id}.
type Input struct {
	Title       string    `json:"title" validate:"required,max=160"`
	Description string    `json:"description" validate:"max=2000"`
	ClubID      *int64    `json:"club_id" validate:"omitempty,gt=0"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}
