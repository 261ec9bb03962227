package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/scholarship-globe/internal/model"
)

var (
	// ErrStaleRow is returned when a save targets a row from a view that a
	// newer query has since replaced.
	ErrStaleRow = errors.New("row belongs to a superseded list")
	// ErrNoSuchRow is returned for a row index outside the current list.
	ErrNoSuchRow = errors.New("no such row")
)

// Searcher is the part of the request client the country list needs.
type Searcher interface {
	FetchScholarships(ctx context.Context, country string) ([]model.Scholarship, error)
	SaveScholarship(ctx context.Context, s model.Scholarship) error
}

// SaveError is a failed save. Alert is the text for the blocking
// notification; the list itself does not show save failures inline.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return e.Alert() }
func (e *SaveError) Unwrap() error { return e.Err }

// Alert returns "Save failed: <message>".
func (e *SaveError) Alert() string {
	return "Save failed: " + e.Err.Error()
}

// Ticket identifies one search. Only the latest ticket may commit a result.
type Ticket struct {
	Seq   uint64
	Query string
}

// CountryList is the search-results container.
//
// SEQUENCING:
// Every Begin takes a new sequence number and immediately shows Loading for
// its query. Results are committed only if their ticket is still the newest,
// so a slow response for an old query can never overwrite a newer one. There
// is no cancellation; the superseded request simply runs to completion and
// its result is dropped.
type CountryList struct {
	api    Searcher
	logger *slog.Logger

	mu   sync.Mutex
	seq  uint64
	view View
}

// NewCountryList creates a hidden, empty list.
func NewCountryList(api Searcher, logger *slog.Logger) *CountryList {
	return &CountryList{api: api, logger: logger}
}

// View returns a snapshot of the container.
func (l *CountryList) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view.clone()
}

// Begin reveals the container in the Loading state for query and returns
// the ticket Resolve needs.
func (l *CountryList) Begin(query string) Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	l.view = View{Seq: l.seq, Kind: Loading, Query: query}
	return Ticket{Seq: l.seq, Query: query}
}

// Resolve performs the search for t and commits its result. It reports
// false when a newer ticket was issued while the request was in flight.
func (l *CountryList) Resolve(ctx context.Context, t Ticket) bool {
	records, err := l.api.FetchScholarships(ctx, t.Query)

	next := View{Seq: t.Seq, Query: t.Query}
	switch {
	case err != nil:
		next.Kind = Failed
		next.Message = err.Error()
	case len(records) == 0:
		next.Kind = Empty
	default:
		next.Kind = Populated
		next.Rows = rowsFor(records)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if t.Seq != l.seq {
		l.logger.Debug("discarding superseded search result",
			slog.String("query", t.Query),
			slog.Uint64("seq", t.Seq),
			slog.Uint64("latest", l.seq),
		)
		return false
	}

	if err != nil {
		l.logger.Warn("scholarship search failed",
			slog.String("query", t.Query),
			slog.String("error", err.Error()),
		)
	}
	l.view = next
	return true
}

// Search runs Begin and Resolve back to back and returns the resulting view.
func (l *CountryList) Search(ctx context.Context, query string) View {
	l.Resolve(ctx, l.Begin(query))
	return l.View()
}

// Save saves row index of the view numbered seq. Rows already saved or
// being saved issue no request. A failed request leaves the row retryable
// and returns a *SaveError.
func (l *CountryList) Save(ctx context.Context, seq uint64, index int) error {
	l.mu.Lock()
	row, err := l.row(seq, index)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if row.Save.Disabled() {
		l.mu.Unlock()
		return nil
	}
	row.Save = SaveSaving
	record := row.Record
	l.mu.Unlock()

	err = l.api.SaveScholarship(ctx, record)

	l.mu.Lock()
	defer l.mu.Unlock()

	// The view may have been replaced by a newer search meanwhile; the
	// request still happened, but there is no button left to update.
	if current, lookupErr := l.row(seq, index); lookupErr == nil {
		if err != nil {
			current.Save = SaveFailed
		} else {
			current.Save = SaveSaved
		}
	}

	if err != nil {
		l.logger.Warn("save failed",
			slog.String("name", record.Name),
			slog.String("error", err.Error()),
		)
		return &SaveError{Err: err}
	}
	return nil
}

// row must be called with l.mu held.
func (l *CountryList) row(seq uint64, index int) (*Row, error) {
	if seq != l.view.Seq || l.view.Kind != Populated {
		return nil, ErrStaleRow
	}
	if index < 0 || index >= len(l.view.Rows) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchRow, index)
	}
	return &l.view.Rows[index], nil
}
