// Package selection turns pointer and keyboard input on the globe into a
// country query, and keeps the hover tooltip.
package selection

import (
	"errors"
	"strings"
	"sync"
)

// ErrEmptyQuery is returned for a search with no text. No request should be
// issued for it.
var ErrEmptyQuery = errors.New("search query is empty")

// Source records where a selection came from.
type Source int

const (
	Click Source = iota
	Search
)

func (s Source) String() string {
	switch s {
	case Click:
		return "click"
	case Search:
		return "search"
	default:
		return "unknown"
	}
}

// Selection is a query term for the scholarship pipeline. A clicked country
// uses its identifier verbatim.
type Selection struct {
	Query  string
	Source Source
}

// FromClick selects the country with the given identifier.
func FromClick(countryID string) Selection {
	return Selection{Query: countryID, Source: Click}
}

// FromSearch selects free text typed into the search box.
func FromSearch(text string) (Selection, error) {
	q := strings.TrimSpace(text)
	if q == "" {
		return Selection{}, ErrEmptyQuery
	}
	return Selection{Query: q, Source: Search}, nil
}

// IsSubmitKey reports whether a keypress submits the search box.
func IsSubmitKey(key string) bool {
	return key == "Enter"
}

// Tooltip offsets and opacities.
const (
	OffsetX        = 10
	OffsetY        = -20
	VisibleOpacity = 0.95
)

// TooltipState is what the tooltip element shows.
type TooltipState struct {
	Text    string  `json:"text"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Opacity float64 `json:"opacity"`
}

// Tooltip follows the pointer over country shapes. Its only state is what it
// last showed and whether it is faded in.
type Tooltip struct {
	mu    sync.Mutex
	state TooltipState
}

// Enter shows the country id near the pointer.
func (t *Tooltip) Enter(countryID string, pageX, pageY float64) TooltipState {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = TooltipState{
		Text:    "Country ID: " + countryID,
		Left:    pageX + OffsetX,
		Top:     pageY + OffsetY,
		Opacity: VisibleOpacity,
	}
	return t.state
}

// Leave fades the tooltip out. Text and position are kept so the fade has
// something to show.
func (t *Tooltip) Leave() TooltipState {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Opacity = 0
	return t.state
}

// State returns the current tooltip.
func (t *Tooltip) State() TooltipState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
