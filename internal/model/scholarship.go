package model

import "time"

// DeadlineUnknown is the placeholder shown (and stored) when a listing has no deadline.
const DeadlineUnknown = "unknown"

// Scholarship is one listing as it travels over the wire between the
// dashboard and the scholarship API.
//
// Deadline is a pointer so that "absent" (JSON null or missing) is different
// from an empty string. Renderers show DeadlineUnknown for nil.
//
// ID is only set on listings read back from a user's saved collection; search
// results carry no identifier.
type Scholarship struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Provider string  `json:"provider"`
	Deadline *string `json:"deadline"`
	URL      string  `json:"url"`
}

// DeadlineOrUnknown returns the deadline text, or DeadlineUnknown when absent.
func (s Scholarship) DeadlineOrUnknown() string {
	if s.Deadline == nil || *s.Deadline == "" {
		return DeadlineUnknown
	}
	return *s.Deadline
}

// SavePayload is the body of POST /scholarships/save: the listing minus any id.
func (s Scholarship) SavePayload() Scholarship {
	return Scholarship{
		Name:     s.Name,
		Provider: s.Provider,
		Deadline: s.Deadline,
		URL:      s.URL,
	}
}

// Deadline returns a pointer to d, for building listings in code and tests.
func Deadline(d string) *string {
	return &d
}

// SavedScholarship is a listing persisted in a user's collection.
type SavedScholarship struct {
	ID        string    `json:"id"         db:"id"`
	UserID    string    `json:"-"          db:"user_id"`
	Name      string    `json:"name"       db:"name"`
	Provider  string    `json:"provider"   db:"provider"`
	Deadline  string    `json:"deadline"   db:"deadline"`
	URL       string    `json:"url"        db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Listing converts a stored row to its wire form.
func (s SavedScholarship) Listing() Scholarship {
	deadline := s.Deadline
	return Scholarship{
		ID:       s.ID,
		Name:     s.Name,
		Provider: s.Provider,
		Deadline: &deadline,
		URL:      s.URL,
	}
}
