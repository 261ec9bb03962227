package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/model"
	"github.com/sakif/scholarship-globe/internal/repository"
)

var _ repository.ScholarshipRepository = (*DB)(nil)

// SaveScholarship inserts s, assigning its ID and CreatedAt.
func (db *DB) SaveScholarship(ctx context.Context, s *model.SavedScholarship) error {
	s.ID = xid.New().String()
	s.CreatedAt = time.Now().UTC()

	_, err := db.exec(ctx,
		`INSERT INTO saved_scholarships (id, user_id, name, provider, deadline, url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.UserID,
		s.Name,
		s.Provider,
		s.Deadline,
		s.URL,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: saving scholarship for user %s: %w", s.UserID, err)
	}
	return nil
}

// ListSaved returns userID's saved scholarships, newest first. IDs break
// ties between rows saved in the same instant; xids sort by creation.
func (db *DB) ListSaved(ctx context.Context, userID string) ([]model.SavedScholarship, error) {
	rows, err := db.query(ctx,
		`SELECT id, user_id, name, provider, deadline, url, created_at
		 FROM saved_scholarships
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing saved scholarships: %w", err)
	}
	defer rows.Close()

	saved := make([]model.SavedScholarship, 0)
	for rows.Next() {
		var s model.SavedScholarship
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Name,
			&s.Provider,
			&s.Deadline,
			&s.URL,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning saved scholarship: %w", err)
		}
		saved = append(saved, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating saved scholarships: %w", err)
	}
	return saved, nil
}

// DeleteSaved deletes one of userID's saved scholarships.
func (db *DB) DeleteSaved(ctx context.Context, userID, id string) error {
	result, err := db.exec(ctx,
		`DELETE FROM saved_scholarships WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting saved scholarship %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking delete result: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("scholarship", id)
	}
	return nil
}
