package service

import (
	"strings"
	"unicode/utf8"

	"github.com/atwam/idmark/internal/imageproc"
	"github.com/atwam/idmark/internal/model"
)

const maxTextLen = 200

func validateQueryParams(req *model.ListRequest) {
	// Обрабатываем пустые значения, присваиваем дефолты если надо
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}

	// в запрос попадают только известные колонки
	switch strings.TrimSpace(strings.ToLower(req.Sort)) {
	case model.ByUUID:
		req.Sort = "mark_uid"
	default:
		req.Sort = "created_at"
	}

	switch strings.TrimSpace(strings.ToLower(req.Order)) {
	case model.OrderASC, "asc":
		req.Order = "ASC"
	default:
		req.Order = "DESC" // по дефолту "новое-выше"
	}
}

func validateNormalizeMarkInfo(raw *model.MarkCreateData, clean *model.Mark) error {
	// корректен ли исходник
	if raw.Image == nil || raw.ImageSize <= 0 {
		return model.ErrEmptySource
	}
	if !model.InImageTypeMap[raw.ContentType] {
		return model.ErrUnsupportedFormat
	}

	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return model.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxTextLen {
		return model.ErrTextTooLong
	}
	clean.Text = text

	mode, err := imageproc.ParseBlendMode(raw.Mode)
	if err != nil {
		return model.ErrIncorrectMode
	}
	clean.Mode = mode.String()

	for _, v := range []*int{raw.MaxW, raw.MaxH} {
		if v != nil && *v <= 0 {
			return model.ErrIncorrectAxis
		}
	}
	clean.MaxW = raw.MaxW
	clean.MaxH = raw.MaxH

	return nil
}
