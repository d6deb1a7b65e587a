// Package service provides business-logic for the app
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/atwam/idmark/internal/model"
	"github.com/atwam/idmark/internal/mwlogger"
	"github.com/atwam/idmark/internal/repository"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

type MarkService struct {
	repo         repository.MarkRepo
	publisher    TaskPublisher
	storage      MarkStorage
	srcKeyPrefix string
}

func NewMarkService(repo repository.MarkRepo, pub TaskPublisher, strg MarkStorage, srcKeyPrefix string) *MarkService {
	return &MarkService{
		repo:         repo,
		publisher:    pub,
		storage:      strg,
		srcKeyPrefix: srcKeyPrefix,
	}
}

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// MarkStorage - контракт для работы с хранилищем
type MarkStorage interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// Стратегия ретрая отправки в очередь
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

func (c MarkService) Create(ctx context.Context, data *model.MarkCreateData) (*model.Mark, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	newMark := &model.Mark{}

	if err := validateNormalizeMarkInfo(data, newMark); err != nil {
		return nil, err
	}

	newMark.UID = uuid.New()

	// кладем в хранилище сорсник
	newMark.SourceKey = c.srcKeyPrefix + newMark.UID.String() + model.GetImageFileExt[data.ContentType]
	if err := c.storage.Put(ctx, newMark.SourceKey, data.ImageSize, data.ContentType, data.Image); err != nil {
		logger.Error().Err(err).Msg("Failed to save src-image in Storage")
		return nil, model.ErrCommon500
	}

	newMark.Status = model.StatusCreated
	now := time.Now().UTC()
	newMark.CreatedAt = &now

	if err := c.repo.Create(ctx, newMark); err != nil {
		logger.Error().Err(err).Msg("Failed to create mark in DB")
		return nil, model.ErrCommon500
	}

	// кладем в очередь задач
	if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(newMark.UID.String()), nil); err != nil {
		logger.Error().Err(err).Str("uid", newMark.UID.String()).Msg("Failed to publish mark to task-queue")
		return nil, model.ErrCommon500
	}

	logger.Info().Str("uid", newMark.UID.String()).Str("mode", newMark.Mode).Msg("mark created")
	return newMark, nil
}

func (c MarkService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Mark, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.repo.GetList(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch marks list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c MarkService) Get(ctx context.Context, id string) (*model.Mark, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, c.notFoundOr500(ctx, err, fmt.Sprintf("Failed to fetch mark %q from DB", id))
	}

	return res, nil
}

func (c MarkService) LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	res, err := c.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if res.Status != model.StatusDone {
		return nil, "", model.ErrResultNotReady
	}

	data, cType, err := c.storage.Get(ctx, res.ResultKey)
	if err != nil {
		logger.Error().Err(err).Str("uid", id).Msg("Failed to fetch result-image from Storage")
		return nil, "", model.ErrCommon500
	}
	return data, cType, nil
}

// Delete removes the row first and then every stored object of the mark.
func (c MarkService) Delete(ctx context.Context, id string) error {
	logger := mwlogger.LoggerFromContext(ctx)

	res, err := c.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		return c.notFoundOr500(ctx, err, "Failed to delete mark from DB")
	}

	if err := c.storage.Delete(ctx, res.SourceKey); err != nil {
		logger.Error().Err(err).Msg("Failed to delete src-image from Storage")
		return model.ErrCommon500
	}
	if res.ResultKey != "" {
		if err := c.storage.Delete(ctx, res.ResultKey); err != nil {
			logger.Error().Err(err).Msg("Failed to delete result-image from Storage")
			return model.ErrCommon500
		}
	}

	return nil
}

func (c MarkService) UpdateStatus(ctx context.Context, id string, newStat model.Status, errMsg ...string) error {
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}
	if !model.StatusMap[newStat] {
		return model.ErrIncorrectStatus
	}

	if err := c.repo.UpdateStatus(ctx, id, newStat, errMsg...); err != nil {
		return c.notFoundOr500(ctx, err, "Failed to update mark status in DB")
	}

	return nil
}

func (c MarkService) SaveResult(ctx context.Context, input *model.Mark) error {
	t := time.Now().UTC()
	input.UpdatedAt = &t
	if err := c.repo.SaveResult(ctx, input); err != nil {
		return c.notFoundOr500(ctx, err, "Failed to save result in DB")
	}

	return nil
}

// ReviveOrphans re-publishes marks that got stuck in the queue.
func (c MarkService) ReviveOrphans(ctx context.Context, limit int) {
	logger := mwlogger.LoggerFromContext(ctx)

	orphans, err := c.repo.FetchOrphans(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load orphans from DB")
		return
	}

	for _, v := range orphans {
		if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(v), nil); err != nil {
			logger.Error().Err(err).Str("uid", v).Msg("Failed to publish orphan to queue")
		}
	}
	if len(orphans) > 0 {
		logger.Info().Int("count", len(orphans)).Msg("orphans re-published")
	}
}

func (c MarkService) notFoundOr500(ctx context.Context, err error, msg string) error {
	if errors.Is(err, model.ErrMarkNotFound) {
		return model.ErrMarkNotFound // 404
	}
	logger := mwlogger.LoggerFromContext(ctx)
	logger.Error().Err(err).Msg(msg)
	return model.ErrCommon500 // 500
}
