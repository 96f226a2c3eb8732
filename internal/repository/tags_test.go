package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/lib/pq"
)

func setupTagMock(t *testing.T) (*PostgresTagRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresTagRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestCreateTag_Success(t *testing.T) {
	repo, mock, cleanup := setupTagMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags (id, name) VALUES ($1, $2)`)).
		WithArgs("t1", "work").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.CreateTag(context.Background(), &models.Tag{ID: "t1", Name: "work"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateTag_Duplicate(t *testing.T) {
	repo, mock, cleanup := setupTagMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags (id, name) VALUES ($1, $2)`)).
		WithArgs("t1", "work").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.CreateTag(context.Background(), &models.Tag{ID: "t1", Name: "work"})
	if !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("error = %v; want ErrDuplicateTag", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListTags(t *testing.T) {
	repo, mock, cleanup := setupTagMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow("t1", "personal").
		AddRow("t2", "work")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM tags ORDER BY name`)).
		WillReturnRows(rows)

	tags, err := repo.ListTags(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "personal" || tags[1].Name != "work" {
		t.Errorf("unexpected tags: %+v", tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetTagsByIDs(t *testing.T) {
	repo, mock, cleanup := setupTagMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow("t1", "work")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM tags WHERE id = ANY($1)`)).
		WithArgs(pq.Array([]string{"t1", "t9"})).
		WillReturnRows(rows)

	tags, err := repo.GetTagsByIDs(context.Background(), []string{"t1", "t9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != "t1" {
		t.Errorf("unexpected tags: %+v", tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateTag_NotFound(t *testing.T) {
	repo, mock, cleanup := setupTagMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tags SET name = $1 WHERE id = $2`)).
		WithArgs("work", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateTag(context.Background(), "missing", "work")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("error = %v; want sql.ErrNoRows", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateTag_DuplicateName(t *testing.T) {
	repo, mock, cleanup := setupTagMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tags SET name = $1 WHERE id = $2`)).
		WithArgs("work", "t1").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.UpdateTag(context.Background(), "t1", "work")
	if !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("error = %v; want ErrDuplicateTag", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteTag_Success(t *testing.T) {
	repo, mock, cleanup := setupTagMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags WHERE id = $1`)).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteTag(context.Background(), "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteTag_NotFound(t *testing.T) {
	repo, mock, cleanup := setupTagMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteTag(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("error = %v; want sql.ErrNoRows", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
