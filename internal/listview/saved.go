package listview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sakif/scholarship-globe/internal/model"
)

// SavedLister is the part of the request client the saved list needs.
type SavedLister interface {
	SavedScholarships(ctx context.Context) ([]model.Scholarship, error)
}

// SavedList is the read-only saved-collection container. One SavedList
// backs one view load: it fetches exactly once and never refreshes.
type SavedList struct {
	api    SavedLister
	logger *slog.Logger
	once   sync.Once

	mu   sync.Mutex
	view View
}

// NewSavedList creates a list in the Loading state.
func NewSavedList(api SavedLister, logger *slog.Logger) *SavedList {
	return &SavedList{
		api:    api,
		logger: logger,
		view:   View{Kind: Loading},
	}
}

// View returns a snapshot of the container.
func (l *SavedList) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view.clone()
}

// Load fetches the collection on the first call and returns the committed
// view. Later calls, including concurrent ones, wait for that first fetch
// and return the same view.
func (l *SavedList) Load(ctx context.Context) View {
	l.once.Do(func() {
		records, err := l.api.SavedScholarships(ctx)

		next := View{}
		switch {
		case err != nil:
			l.logger.Warn("loading saved scholarships failed", slog.String("error", err.Error()))
			next.Kind = Failed
			next.Message = err.Error()
		case len(records) == 0:
			next.Kind = Empty
		default:
			next.Kind = Populated
			next.Rows = rowsFor(records)
		}

		l.mu.Lock()
		l.view = next
		l.mu.Unlock()
	})
	return l.View()
}
