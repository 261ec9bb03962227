package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/finder"
	"github.com/sakif/scholarship-globe/internal/model"
	"github.com/sakif/scholarship-globe/internal/repository"
)

// MaxQueryLength bounds a country or keyword query.
const MaxQueryLength = 100

// ScholarshipService finds scholarships and manages each user's saved list.
//
// The finder is an interface for the same reason the repository is: tests
// pass a stub, production passes Gemini wrapped in finder.WithFallback.
type ScholarshipService struct {
	finder finder.Finder
	repo   repository.ScholarshipRepository
	logger *slog.Logger
}

// NewScholarshipService creates a new ScholarshipService.
func NewScholarshipService(f finder.Finder, repo repository.ScholarshipRepository, logger *slog.Logger) *ScholarshipService {
	return &ScholarshipService{
		finder: f,
		repo:   repo,
		logger: logger,
	}
}

// Search returns listings for a country name or keyword, in the order the
// finder produced them. Every listing carries a deadline, "unknown" when
// the finder had none.
func (s *ScholarshipService) Search(ctx context.Context, query string) ([]model.Scholarship, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("country", "country is required")
	}
	if len(query) > MaxQueryLength {
		return nil, apperror.ValidationFailed("country",
			fmt.Sprintf("country must be %d characters or less", MaxQueryLength))
	}

	listings, err := s.finder.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service/scholarship: finding %q: %w", query, err)
	}

	out := make([]model.Scholarship, 0, len(listings))
	for _, l := range listings {
		l.Deadline = model.Deadline(l.DeadlineOrUnknown())
		out = append(out, l)
	}

	s.logger.Info("scholarships found",
		slog.String("query", query),
		slog.Int("count", len(out)),
	)
	return out, nil
}

// Save stores a listing in the user's saved list. Provider defaults to ""
// and deadline to "unknown"; name and url are required.
func (s *ScholarshipService) Save(ctx context.Context, userID string, in model.Scholarship) (*model.SavedScholarship, error) {
	rec := &model.SavedScholarship{
		UserID:   userID,
		Name:     strings.TrimSpace(in.Name),
		Provider: strings.TrimSpace(in.Provider),
		Deadline: strings.TrimSpace(in.DeadlineOrUnknown()),
		URL:      strings.TrimSpace(in.URL),
	}
	if rec.Name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if rec.URL == "" {
		return nil, apperror.ValidationFailed("url", "url is required")
	}
	if rec.Deadline == "" {
		rec.Deadline = model.DeadlineUnknown
	}

	if err := s.repo.SaveScholarship(ctx, rec); err != nil {
		return nil, fmt.Errorf("service/scholarship: saving: %w", err)
	}

	s.logger.Info("scholarship saved",
		slog.String("userID", userID),
		slog.String("id", rec.ID),
	)
	return rec, nil
}

// ListSaved returns the user's saved listings, newest first.
func (s *ScholarshipService) ListSaved(ctx context.Context, userID string) ([]model.SavedScholarship, error) {
	saved, err := s.repo.ListSaved(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/scholarship: listing saved: %w", err)
	}
	return saved, nil
}

// DeleteSaved removes one of the user's saved listings. A listing that
// belongs to someone else is reported as not found.
func (s *ScholarshipService) DeleteSaved(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "id is required")
	}
	if err := s.repo.DeleteSaved(ctx, userID, id); err != nil {
		return fmt.Errorf("service/scholarship: deleting %s: %w", id, err)
	}

	s.logger.Info("saved scholarship deleted",
		slog.String("userID", userID),
		slog.String("id", id),
	)
	return nil
}
