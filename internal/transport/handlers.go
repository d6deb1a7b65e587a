// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"

	"github.com/atwam/idmark/internal/model"
	"github.com/atwam/idmark/internal/mwlogger"
	"github.com/wb-go/wbf/ginext"
)

type MarkHandler struct {
	service MarkService
}

type MarkService interface {
	Create(ctx context.Context, data *model.MarkCreateData) (*model.Mark, error)
	Get(ctx context.Context, id string) (*model.Mark, error)
	Delete(ctx context.Context, id string) error                               // удалить как в базе, так и в minio
	LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error)  // прям скачать результат
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Mark, error) // получить список
}

func NewMarkHandler(svc MarkService) *MarkHandler {
	return &MarkHandler{
		service: svc,
	}
}

// RegisterRoutes mounts every mark endpoint on engine.
func (h MarkHandler) RegisterRoutes(engine *ginext.Engine) {
	engine.GET("/ping", h.SimplePinger)
	engine.POST("/marks/upload", h.Create)   // создание
	engine.GET("/marks/:id", h.LoadResult)   // загрузка результата
	engine.GET("/marks/:id/info", h.GetInfo) // статус задачи
	engine.GET("/marks", h.GetAllMarks)      // список с пагинацией и сортировкой
	engine.DELETE("/marks/:id", h.Delete)    // удаление
}

func (h MarkHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h MarkHandler) Create(ctx *ginext.Context) {
	maxW, err := optionalInt(ctx.PostForm("max_w"))
	if err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrIncorrectAxis.Error()})
		return
	}
	maxH, err := optionalInt(ctx.PostForm("max_h"))
	if err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrIncorrectAxis.Error()})
		return
	}

	// парсинг исходника
	imageFile, imageHeader, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": "image is required"})
		return
	}
	defer closeFileFlow(imageFile)

	data := model.MarkCreateData{
		Text:        ctx.PostForm("text"),
		Mode:        ctx.PostForm("mode"),
		MaxW:        maxW,
		MaxH:        maxH,
		Image:       imageFile,
		ContentType: imageHeader.Header.Get("Content-Type"),
		ImageSize:   imageHeader.Size,
	}

	res, err := h.service.Create(ctx.Request.Context(), &data)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, res)
}

func (h MarkHandler) GetAllMarks(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrIncorrectQuery.Error()})
		return
	}

	res, err := h.service.GetList(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h MarkHandler) GetInfo(ctx *ginext.Context) {
	res, err := h.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h MarkHandler) LoadResult(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, cType, err := h.service.LoadResult(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer closeFileFlow(res)

	ctx.Writer.Header().Set("Content-Type", cType)
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, res); err != nil {
		logger := mwlogger.LoggerFromContext(ctx.Request.Context())
		logger.Error().Err(err).Int64("written", n).Str("uid", id).Msg("Failed to write response")
	}
}

func (h MarkHandler) Delete(ctx *ginext.Context) {
	id := ctx.Param("id")
	if err := h.service.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Status(204)
}
