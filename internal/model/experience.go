package model

import "time"

// Experience is a work experience entry as returned to clients.
type Experience struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Duration     string     `json:"duration"`
	Description  []string   `json:"description"`
	Technologies []string   `json:"technologies"`
	Image        string     `json:"image"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// ExperienceInput holds every writable Experience field. It is used on create and full update.
type ExperienceInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Company      string   `json:"company" validate:"required,max=200"`
	Duration     string   `json:"duration" validate:"required,max=100"`
	Description  []string `json:"description" validate:"required"`
	Technologies []string `json:"technologies" validate:"required"`
	Image        string   `json:"image" validate:"required,max=255"`
}

// ExperiencePatch is a partial update. Nil fields keep their stored value.
type ExperiencePatch struct {
	Title        *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Company      *string   `json:"company,omitempty" validate:"omitempty,min=1,max=200"`
	Duration     *string   `json:"duration,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *[]string `json:"description,omitempty"`
	Technologies *[]string `json:"technologies,omitempty"`
	Image        *string   `json:"image,omitempty" validate:"omitempty,min=1,max=255"`
}
