package model

import "time"

// Project is a portfolio project as returned to clients.
type Project struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	Technologies []string   `json:"technologies"`
	Category     []string   `json:"category"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type ProjectInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required"`
	Image        string   `json:"image" validate:"required,max=255"`
	Technologies []string `json:"technologies" validate:"required"`
	Category     []string `json:"category" validate:"required"`
}

type ProjectPatch struct {
	Title        *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Image        *string   `json:"image,omitempty" validate:"omitempty,min=1,max=255"`
	Technologies *[]string `json:"technologies,omitempty"`
	Category     *[]string `json:"category,omitempty"`
}
