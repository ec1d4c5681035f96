package store

import (
	"errors"
	"testing"

	"oneonone/internal/models"
	"oneonone/internal/testhelpers"
)

func TestGetBySessionID(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &SessionRepository{DB: db}
	testhelpers.SeedSession(t, db, "s1", "org-1", "mgr-1", "emp-1", "existing notes")

	session, err := repo.GetBySessionID("s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ManagerID != "mgr-1" || session.EmployeeID != "emp-1" || session.Notes != "existing notes" {
		t.Fatalf("unexpected session: %#v", session)
	}
}

func TestGetBySessionIDNotFound(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &SessionRepository{DB: db}

	if _, err := repo.GetBySessionID("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateNotes(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &SessionRepository{DB: db}
	testhelpers.SeedSession(t, db, "s1", "org-1", "mgr-1", "emp-1", "")

	if err := repo.UpdateNotes("s1", "updated notes"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var session models.Session
	if err := db.First(&session, "session_id = ?", "s1").Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if session.Notes != "updated notes" {
		t.Fatalf("expected updated notes, got %q", session.Notes)
	}
}

func TestUpdateNotesNotFound(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &SessionRepository{DB: db}

	if err := repo.UpdateNotes("missing", "notes"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
