package main

import (
	"context"

	"github.com/atwam/idmark/internal/transport"
)

// MarkAPIService - всё, что нужно API-процессу от сервиса: хендлеры плюс подъём зависших задач
type MarkAPIService interface {
	transport.MarkService
	ReviveOrphans(ctx context.Context, limit int)
}
