package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/model"
)

// newTestDB opens a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "$2a$04$hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestOpen_FileDatabaseIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "globe.db")

	db, err := Open("sqlite://" + path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	user := createTestUser(t, db, "a@example.com")
	db.Close()

	// Migrations must be safe to run again on an existing schema.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	got, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() after reopen error = %v", err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "a@example.com")
	}
	if db.Driver() != "sqlite" {
		t.Errorf("Driver() = %q, want sqlite", db.Driver())
	}
}

func TestRebind(t *testing.T) {
	query := `SELECT a FROM t WHERE b = ? AND c = ? LIMIT ?`

	sqlite := &DB{dialect: dialectSQLite}
	if got := sqlite.rebind(query); got != query {
		t.Errorf("sqlite rebind changed the query: %q", got)
	}

	pg := &DB{dialect: dialectPostgres}
	want := `SELECT a FROM t WHERE b = $1 AND c = $2 LIMIT $3`
	if got := pg.rebind(query); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}

// =========================================================================
// USERS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "ada@example.com")

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "ada@example.com")

	err := db.CreateUser(context.Background(), &model.User{
		FirstName: "Other", LastName: "Person", Email: "ada@example.com", PasswordHash: "x",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "ada@example.com")

	got, err := db.GetUserByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != created.ID || got.FirstName != "Ada" || got.PasswordHash != "$2a$04$hash" {
		t.Errorf("GetUserByEmail() = %+v, want the created user", got)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetUserByID(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// SAVED SCHOLARSHIPS
// =========================================================================

func saveTestScholarship(t *testing.T, db *DB, userID, name string) *model.SavedScholarship {
	t.Helper()
	s := &model.SavedScholarship{
		UserID:   userID,
		Name:     name,
		Provider: "Provider",
		Deadline: model.DeadlineUnknown,
		URL:      "https://example.org/" + name,
	}
	if err := db.SaveScholarship(context.Background(), s); err != nil {
		t.Fatalf("failed to save scholarship: %v", err)
	}
	return s
}

func TestListSaved_NewestFirstPerUser(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	saveTestScholarship(t, db, ada.ID, "first")
	saveTestScholarship(t, db, bob.ID, "not-ada")
	saveTestScholarship(t, db, ada.ID, "second")
	saveTestScholarship(t, db, ada.ID, "third")

	saved, err := db.ListSaved(context.Background(), ada.ID)
	if err != nil {
		t.Fatalf("ListSaved() error = %v", err)
	}

	var names []string
	for _, s := range saved {
		names = append(names, s.Name)
		if s.UserID != ada.ID {
			t.Errorf("ListSaved() returned another user's row %q", s.Name)
		}
	}
	want := []string{"third", "second", "first"}
	if len(names) != len(want) {
		t.Fatalf("ListSaved() names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListSaved()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestListSaved_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ada@example.com")

	saved, err := db.ListSaved(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListSaved() error = %v", err)
	}
	if saved == nil || len(saved) != 0 {
		t.Errorf("ListSaved() = %#v, want an empty non-nil slice", saved)
	}
}

func TestDeleteSaved(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	s := saveTestScholarship(t, db, ada.ID, "keep-me")

	if err := db.DeleteSaved(context.Background(), bob.ID, s.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("DeleteSaved() by another user error = %v, want ErrNotFound", err)
	}

	if err := db.DeleteSaved(context.Background(), ada.ID, s.ID); err != nil {
		t.Fatalf("DeleteSaved() error = %v", err)
	}

	if err := db.DeleteSaved(context.Background(), ada.ID, s.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteSaved() error = %v, want ErrNotFound", err)
	}
}
