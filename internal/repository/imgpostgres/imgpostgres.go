// Package imgpostgres implements the marks repository on top of Postgres
package imgpostgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atwam/idmark/internal/model"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

func (p PostgresRepo) Create(ctx context.Context, m *model.Mark) error {
	query := `INSERT INTO marks (mark_uid, source_key, result_key, mark_text, blend_mode, max_w, max_h, status, err_msg, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := p.DB.Master.ExecContext(ctx, query, m.UID, m.SourceKey, m.ResultKey, m.Text, m.Mode, m.MaxW, m.MaxH, m.Status, m.ErrMsg, m.CreatedAt, m.CreatedAt)
	return err
}

func (p PostgresRepo) Get(ctx context.Context, id string) (*model.Mark, error) {
	query := `SELECT mark_uid, source_key, result_key, mark_text, blend_mode, max_w, max_h, status, err_msg, created_at, updated_at
	FROM marks
	WHERE mark_uid = $1`
	var mark model.Mark

	err := p.DB.QueryRowContext(ctx, query, id).Scan(&mark.UID,
		&mark.SourceKey,
		&mark.ResultKey,
		&mark.Text,
		&mark.Mode,
		&mark.MaxW,
		&mark.MaxH,
		&mark.Status,
		&mark.ErrMsg,
		&mark.CreatedAt,
		&mark.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrMarkNotFound
		default:
			return nil, err // 500
		}
	}
	return &mark, nil
}

// GetList expects req.Sort and req.Order already normalized by the service layer.
func (p PostgresRepo) GetList(ctx context.Context, req *model.ListRequest) ([]model.Mark, error) {
	query := fmt.Sprintf(`SELECT mark_uid, mark_text, blend_mode, max_w, max_h, status, err_msg, created_at, updated_at
	FROM marks
	ORDER BY %s %s
	LIMIT $1
	OFFSET $2`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.QueryContext(ctx, query, req.Limit, offset)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("Error while closing *sql.Rows after scanning")
		}
	}()

	marks := make([]model.Mark, 0, req.Limit)
	for rows.Next() {
		var mark model.Mark
		if err := rows.Scan(&mark.UID,
			&mark.Text,
			&mark.Mode,
			&mark.MaxW,
			&mark.MaxH,
			&mark.Status,
			&mark.ErrMsg,
			&mark.CreatedAt,
			&mark.UpdatedAt); err != nil {
			return nil, err
		}
		marks = append(marks, mark)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return marks, nil
}

func (p PostgresRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM marks
	WHERE mark_uid = $1`

	res, err := p.DB.Master.ExecContext(ctx, query, id)
	if err != nil {
		return err // 500
	}
	return expectAffected(res)
}

// UpdateStatus sets the status and appends errMsg to the stored error list.
func (p PostgresRepo) UpdateStatus(ctx context.Context, id string, newStat model.Status, errMsg ...string) error {
	query := `UPDATE marks SET status = $1, err_msg = err_msg || $2::jsonb, updated_at = now() WHERE mark_uid = $3`

	res, err := p.DB.Master.ExecContext(ctx, query, newStat, model.StringSlice(errMsg), id)
	if err != nil {
		return err // 500
	}
	return expectAffected(res)
}

func (p PostgresRepo) SaveResult(ctx context.Context, input *model.Mark) error {
	query := `UPDATE marks SET status = $1, updated_at = $2, result_key = $3 WHERE mark_uid = $4`

	res, err := p.DB.Master.ExecContext(ctx, query, input.Status, input.UpdatedAt, input.ResultKey, input.UID)
	if err != nil {
		return err // 500
	}
	return expectAffected(res)
}

// FetchOrphans returns ids of marks stuck in created or in_progress for longer than model.OrphanTimeout.
func (p PostgresRepo) FetchOrphans(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT mark_uid
	FROM marks
	WHERE status IN ($1, $2)
	AND updated_at < $3
	LIMIT $4`

	rows, err := p.DB.QueryContext(ctx, query, model.StatusCreated, model.StatusInProgress, time.Now().Add(-model.OrphanTimeout), limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("Error while closing *sql.Rows after scanning")
		}
	}()

	orphans := make([]string, 0, limit)
	for rows.Next() {
		uid := ""
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		orphans = append(orphans, uid)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return orphans, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrMarkNotFound // 404
	}
	return nil
}
