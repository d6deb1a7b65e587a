package imgpostgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atwam/idmark/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

func newRepoWithMock(t *testing.T) (PostgresRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pg := &dbpg.DB{Master: db}

	repo := PostgresRepo{DB: pg}

	return repo, mock
}

func ptr[T any](v T) *T { return &v }

// CREATE - SUCCESS
func TestPostgresRepo_Create_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	ctime := time.Now()
	mark := &model.Mark{
		UID:       uuid.New(),
		SourceKey: "src/1.jpg",
		Text:      "Tenancy application",
		Mode:      "darken",
		MaxW:      ptr(800),
		Status:    model.StatusCreated,
		CreatedAt: &ctime,
	}

	mock.ExpectExec(`INSERT INTO marks`).
		WithArgs(
			mark.UID,
			mark.SourceKey,
			mark.ResultKey,
			mark.Text,
			mark.Mode,
			mark.MaxW,
			mark.MaxH,
			mark.Status,
			mark.ErrMsg,
			mark.CreatedAt,
			mark.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), mark))
	require.NoError(t, mock.ExpectationsWereMet())
}

// GET - SUCCESS
func TestPostgresRepo_Get_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New().String()

	rows := sqlmock.NewRows([]string{
		"mark_uid", "source_key", "result_key", "mark_text", "blend_mode",
		"max_w", "max_h", "status", "err_msg", "created_at", "updated_at",
	}).AddRow(
		id, "src", "", "TEST", "lighten-darken",
		640, nil, model.StatusCreated, []byte(`["first try failed"]`), time.Now(), time.Now(),
	)

	mock.ExpectQuery(`SELECT mark_uid`).
		WithArgs(id).
		WillReturnRows(rows)

	mark, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, mark.UID.String())
	require.Equal(t, "TEST", mark.Text)
	require.Equal(t, "lighten-darken", mark.Mode)
	require.Equal(t, 640, *mark.MaxW)
	require.Nil(t, mark.MaxH)
	require.Equal(t, model.StringSlice{"first try failed"}, mark.ErrMsg)
}

// GET - NOT FOUND
func TestPostgresRepo_Get_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT mark_uid`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, model.ErrMarkNotFound)
}

// GETLIST - SUCCESS
func TestPostgresRepo_GetList_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	req := &model.ListRequest{
		Page:  2,
		Limit: 2,
		Sort:  "created_at",
		Order: "DESC",
	}

	rows := sqlmock.NewRows([]string{
		"mark_uid", "mark_text", "blend_mode", "max_w", "max_h",
		"status", "err_msg", "created_at", "updated_at",
	}).
		AddRow(uuid.New(), "A", "darken", 100, nil, model.StatusDone, nil, time.Now(), time.Now()).
		AddRow(uuid.New(), "B", "darken", nil, nil, model.StatusCreated, nil, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT mark_uid, mark_text(.|\n)*ORDER BY created_at DESC`).
		WithArgs(2, 2).
		WillReturnRows(rows)

	res, err := repo.GetList(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, "B", res[1].Text)
}

func TestPostgresRepo_Delete(t *testing.T) {
	tests := []struct {
		name    string
		result  sql.Result
		dbErr   error
		wantErr error
	}{
		{name: "success", result: sqlmock.NewResult(0, 1)},
		{name: "not found", result: sqlmock.NewResult(0, 0), wantErr: model.ErrMarkNotFound},
		{name: "db error", dbErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			exp := mock.ExpectExec(`DELETE FROM marks`).WithArgs("id")
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.Delete(context.Background(), "id")
			switch {
			case tt.dbErr != nil:
				require.ErrorIs(t, err, tt.dbErr)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestPostgresRepo_UpdateStatus(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE marks SET status`).
		WithArgs(model.StatusFailed, model.StringSlice{"decode failed"}, "id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "id", model.StatusFailed, "decode failed"))

	mock.ExpectExec(`UPDATE marks SET status`).
		WithArgs(model.StatusInProgress, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), "missing", model.StatusInProgress)
	require.ErrorIs(t, err, model.ErrMarkNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SaveResult(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mark := &model.Mark{UID: uuid.New(), Status: model.StatusDone, ResultKey: "res/1.png", UpdatedAt: &now}

	mock.ExpectExec(`UPDATE marks SET status = \$1, updated_at = \$2, result_key = \$3`).
		WithArgs(mark.Status, mark.UpdatedAt, mark.ResultKey, mark.UID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveResult(context.Background(), mark))
	require.NoError(t, mock.ExpectationsWereMet())
}

// FETCHORPHANS - SUCCESS
func TestPostgresRepo_FetchOrphans_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"mark_uid"}).
		AddRow("id1").
		AddRow("id2")

	mock.ExpectQuery(`SELECT mark_uid`).
		WithArgs(model.StatusCreated, model.StatusInProgress, sqlmock.AnyArg(), 2).
		WillReturnRows(rows)

	res, err := repo.FetchOrphans(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, []string{"id1", "id2"}, res)
}
