// Package worker contains methods for worker to init at start, and to process marks
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/atwam/idmark/internal/fonts"
	"github.com/atwam/idmark/internal/imageproc"
	"github.com/atwam/idmark/internal/model"
	"github.com/atwam/idmark/internal/mwlogger"
	"github.com/atwam/idmark/internal/service"
	"github.com/disintegration/imaging"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/image/font"
)

// NoopPublisher - ЗАГЛУШКА, функциональность настоящего паблишера в очередь не нужна в рамках работы воркера
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error {
	return nil
}

type MarkWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status, errMsg ...string) error
	SaveResult(ctx context.Context, res *model.Mark) error
	Get(ctx context.Context, id string) (*model.Mark, error)
}

// Committer acknowledges a processed queue message.
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

// FaceSource builds a fresh font face per task; faces are not shared between goroutines.
type FaceSource interface {
	Face(family string, style fonts.Style, size float64) (font.Face, error)
}

type Worker struct {
	storage   service.MarkStorage
	service   MarkWorkerService
	queue     <-chan kafkago.Message
	committer Committer
	faces     FaceSource
	settings  Settings
}

func NewWorkerInstance(strg service.MarkStorage, svc MarkWorkerService, q <-chan kafkago.Message, c Committer, faces FaceSource, s Settings) *Worker {
	return &Worker{storage: strg, service: svc, queue: q, committer: c, faces: faces, settings: s}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				zlog.Logger.Info().Msg("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			tctx := mwlogger.ContextWithLogger(ctx, zlog.Logger.With().Str("task_id", id).Logger())

			if err := w.initProcessor(tctx, id); err != nil {
				logger := mwlogger.LoggerFromContext(tctx)
				logger.Error().Err(err).Msg("Task failed")
				if !committable(err) {
					continue
				}
			}
			if err := w.committer.Commit(ctx, msg); err != nil {
				zlog.Logger.Error().Err(err).Msg("Failed to commit queue-message")
			}
		}
	}
}

var (
	errTaskBusy   = errors.New("task is already in progress")
	errTaskFailed = errors.New("task failed")
)

// stale reports whether an in_progress task outlived model.OrphanTimeout and may be taken over.
// A task without updated_at has no live owner to wait for.
func stale(task *model.Mark) bool {
	return task.UpdatedAt == nil || time.Since(*task.UpdatedAt) > model.OrphanTimeout
}

// committable reports whether the message can be acknowledged despite err.
// Failures already recorded on the mark and marks that no longer exist are final.
func committable(err error) bool {
	return errors.Is(err, errTaskFailed) || errors.Is(err, model.ErrMarkNotFound) || errors.Is(err, model.ErrIncorrectID)
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	task, err := w.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("worker failed to fetch mark %q from DB: %w", id, err)
	}

	switch task.Status {
	case model.StatusDone:
		return nil
	case model.StatusInProgress:
		if !stale(task) {
			return errTaskBusy
		}
		logger := mwlogger.LoggerFromContext(ctx)
		logger.Warn().Interface("updated_at", task.UpdatedAt).Msg("reclaiming stale task")
	}

	// результат уже лежит в хранилище - только поправить статус
	if w.settings.ResultKey != "" && strings.HasPrefix(task.ResultKey, w.settings.ResultKey) {
		if err := w.service.UpdateStatus(ctx, id, model.StatusDone); err != nil {
			return fmt.Errorf("failed to update status of already-done task in DB: %w", err)
		}
		return nil
	}

	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of task %q to `in_progress` in DB: %w", id, err)
	}

	if pErr := w.processTask(ctx, task); pErr != nil {
		if uErr := w.service.UpdateStatus(ctx, id, model.StatusFailed, pErr.Error()); uErr != nil {
			return fmt.Errorf("failed to set status of task %q to `failed` in DB: %w; after processing error: %w", id, uErr, pErr)
		}
		return fmt.Errorf("failed to process task %q: %w: %w", id, errTaskFailed, pErr)
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Info().Msg("task done")
	return nil
}

func (w *Worker) processTask(ctx context.Context, task *model.Mark) error {
	base, _, err := w.storage.Get(ctx, task.SourceKey)
	if err != nil {
		return fmt.Errorf("worker failed to fetch base-image from storage: %w", err)
	}

	// формат результата совпадает с форматом исходника
	pBase, format, err := validateImgFormat(base)
	if err != nil {
		return fmt.Errorf("worker failed to validate base-image format: %w", err)
	}

	wm, face, err := w.newWatermarker(task)
	if err != nil {
		return fmt.Errorf("worker failed to prepare watermark: %w", err)
	}
	defer closeFace(face)

	result, size, err := imageproc.Watermark(pBase, wm, deref(task.MaxW), deref(task.MaxH), format)
	if err != nil {
		return fmt.Errorf("worker failed to apply watermark: %w", err)
	}

	resCType := model.GetCType[format]
	resKey := w.settings.ResultKey + task.UID.String() + model.GetImageFileExt[resCType]
	if err := w.storage.Put(ctx, resKey, size, resCType, result); err != nil {
		return fmt.Errorf("worker failed to put result image to storage: %w", err)
	}

	task.Status = model.StatusDone
	task.ResultKey = resKey

	if err := w.service.SaveResult(ctx, task); err != nil {
		return fmt.Errorf("worker failed to save result to DB: %w", err)
	}
	return nil
}

// newWatermarker overlays the task's text and blend mode on the base profile.
func (w *Worker) newWatermarker(task *model.Mark) (*imageproc.Watermarker, font.Face, error) {
	cfg := w.settings.Profile
	cfg.Text = task.Text

	mode, err := imageproc.ParseBlendMode(task.Mode)
	if err != nil {
		return nil, nil, err
	}
	cfg.Blend = mode

	face, err := w.faces.Face(w.settings.FontFamily, w.settings.FontStyle, cfg.FontSize)
	if err != nil {
		return nil, nil, err
	}

	wm, err := imageproc.New(face, cfg)
	if err != nil {
		closeFace(face)
		return nil, nil, err
	}
	return wm, face, nil
}

func validateImgFormat(r io.ReadCloser) (io.Reader, imaging.Format, error) {
	if r == nil {
		return nil, -1, errors.New("nil-reader provided")
	}
	defer closeFileFlow(r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, -1, err
	}

	_, f, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, -1, err
	}

	format, err := imaging.FormatFromExtension(f)
	if err != nil {
		return nil, -1, err
	}

	switch format {
	case imaging.PNG, imaging.JPEG, imaging.GIF:
	default:
		return nil, -1, model.ErrUnsupportedFormat
	}

	return bytes.NewReader(data), format, nil
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func closeFace(f font.Face) {
	if f == nil {
		return
	}
	if err := f.Close(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("Worker failed to close font face")
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("Worker failed to close fileflow")
	}
}
