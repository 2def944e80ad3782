package parties

import "time"

// Party is a political party tracked by the platform.
type Party struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	Leader       string    `json:"leader"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input is the payload of POST /parties and PUT /parties/{id}.
type Input struct {
	Name         string `json:"name" validate:"required,max=160"`
	Abbreviation string `json:"abbreviation" validate:"required,alphanum,min=2,max=10"`
	Leader       string `json:"leader" validate:"max=160"`
}
