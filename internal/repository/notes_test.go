package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/lib/pq"
)

func setupNoteMock(t *testing.T) (*PostgresNoteRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresNoteRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func noteColumns() []string {
	return []string{"id", "owner_id", "email", "title", "content",
		"is_pinned", "is_favorite", "is_shared", "created_at", "updated_at"}
}

func TestCreateNote_WithTags(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	now := time.Now()
	note := &models.Note{
		ID: "n1", OwnerID: "u1", Title: "T", Content: "c",
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notes`)).
		WithArgs("n1", "u1", "T", "c", false, false, false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO note_tags`)).
		WithArgs("n1", "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO note_tags`)).
		WithArgs("n1", "t2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.CreateNote(context.Background(), note, []string{"t1", "t2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateNote_InsertError(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	now := time.Now()
	note := &models.Note{ID: "n1", OwnerID: "u1", Title: "T", CreatedAt: now, UpdatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notes`)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	if err := repo.CreateNote(context.Background(), note, nil); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetNoteByID_Found(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT n.id, n.owner_id, u.email`).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows(noteColumns()).
			AddRow("n1", "u1", "a@x.com", "T", "c", true, false, true, now, now))
	mock.ExpectQuery(`SELECT nt.note_id, t.id, t.name`).
		WithArgs(pq.Array([]string{"n1"})).
		WillReturnRows(sqlmock.NewRows([]string{"note_id", "id", "name"}).
			AddRow("n1", "t1", "work"))

	note, err := repo.GetNoteByID(context.Background(), "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.Owner != "a@x.com" || !note.IsPinned || !note.IsShared {
		t.Errorf("unexpected note: %+v", note)
	}
	if len(note.Tags) != 1 || note.Tags[0].Name != "work" {
		t.Errorf("unexpected tags: %+v", note.Tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetNoteByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT n.id, n.owner_id, u.email`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetNoteByID(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("error = %v; want sql.ErrNoRows", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListNotes_UnionAndPaging(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notes n`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT n.id, n.owner_id, u.email`).
		WithArgs("u1", 9, 0).
		WillReturnRows(sqlmock.NewRows(noteColumns()).
			AddRow("n1", "u1", "a@x.com", "mine", "", true, false, false, now, now).
			AddRow("n2", "u2", "b@x.com", "theirs shared", "", false, false, true, now, now))
	mock.ExpectQuery(`SELECT nt.note_id, t.id, t.name`).
		WithArgs(pq.Array([]string{"n1", "n2"})).
		WillReturnRows(sqlmock.NewRows([]string{"note_id", "id", "name"}))

	notes, total, err := repo.ListNotes(context.Background(), NoteFilter{
		ViewerID: "u1", Limit: 9, Offset: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(notes) != 2 {
		t.Fatalf("total = %d, len = %d; want 2, 2", total, len(notes))
	}
	if notes[0].ID != "n1" || notes[1].Owner != "b@x.com" {
		t.Errorf("unexpected notes: %+v", notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListNotes_Filters(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	pinned := true
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notes n`).
		WithArgs("u1", "%meeting%", true, "t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT n.id, n.owner_id, u.email`).
		WithArgs("u1", "%meeting%", true, "t1", 5, 10).
		WillReturnRows(sqlmock.NewRows(noteColumns()))

	notes, total, err := repo.ListNotes(context.Background(), NoteFilter{
		ViewerID: "u1",
		Search:   "meeting",
		IsPinned: &pinned,
		TagID:    "t1",
		OrderBy:  []string{"n.title ASC"},
		Limit:    5,
		Offset:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(notes) != 0 {
		t.Errorf("total = %d, len = %d; want 0, 0", total, len(notes))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateNote_ReplaceTags(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	now := time.Now()
	note := &models.Note{
		ID: "n1", Title: "T", Content: "c",
		IsPinned: true, UpdatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE notes`)).
		WithArgs("T", "c", true, false, false, now, "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM note_tags WHERE note_id = $1`)).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO note_tags`)).
		WithArgs("n1", "t3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.UpdateNote(context.Background(), note, []string{"t3"}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateNote_KeepTags(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	now := time.Now()
	note := &models.Note{ID: "n1", Title: "T", UpdatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE notes`)).
		WithArgs("T", "", false, false, false, now, "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.UpdateNote(context.Background(), note, nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	note := &models.Note{ID: "missing", Title: "T", UpdatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE notes`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateNote(context.Background(), note, nil, false)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("error = %v; want sql.ErrNoRows", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteNote(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE id = $1`)).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteNote(context.Background(), "n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteNote_NotFound(t *testing.T) {
	repo, mock, cleanup := setupNoteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteNote(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("error = %v; want sql.ErrNoRows", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
