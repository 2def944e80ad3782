package clubs

import "time"

// Club is a local chapter members belong to.
type Club struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	CategoryID *int64    `json:"category_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Input is the payload of POST /clubs and PUT /clubs/{id}. IsActive
// defaults to true when omitted.
type Input struct {
	Name       string `json:"name" validate:"required,max=120"`
	City       string `json:"city" validate:"max=120"`
	CategoryID *int64 `json:"category_id" validate:"omitempty,gt=0"`
	IsActive   *bool  `json:"is_active"`
}

func (in Input) active() bool {
	return in.IsActive == nil || *in.IsActive
}
