package model

// Package model contains the resource types exchanged between layers.
// Records carry json tags for the HTTP boundary and validate tags for request checks;
// they have no persistence-specific dependencies.

// Collection names used by the record access layer.
const (
	ExperienceCollection = "experiences"
	ProjectCollection    = "projects"
)
