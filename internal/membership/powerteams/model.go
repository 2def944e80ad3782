package powerteams

import "time"

// PowerTeam is a squad inside a club.
type PowerTeam struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	ClubID     int64     `json:"club_id"`
	CategoryID *int64    `json:"category_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Input is the payload of POST /power-teams and PUT /power-teams/{id}.
type Input struct {
	Name       string `json:"name" validate:"required,max=120"`
	ClubID     int64  `json:"club_id" validate:"required,gt=0"`
	CategoryID *int64 `json:"category_id" validate:"omitempty,gt=0"`
}
