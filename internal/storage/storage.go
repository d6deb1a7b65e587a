// Package storage connects the app to its object storage
package storage

import (
	"context"
	"time"

	"github.com/atwam/idmark/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

// NewMarkStorage keeps retrying until the storage answers or ctx is done; nil is returned only on ctx cancel.
func NewMarkStorage(ctx context.Context, cfg *config.Config, delay time.Duration) *miniostorage.MinioMarkStorage {
	for {
		zlog.Logger.Info().Msg("Connecting to mark-storage...")
		client, err := miniostorage.NewMinioClient(ctx, miniostorage.OptionsFromConfig(cfg))
		if err == nil {
			zlog.Logger.Info().Msg("Successfully connected mark-storage!")
			return client
		}
		zlog.Logger.Warn().Err(err).Dur("retry_in", delay).Msg("Failed to init connection to mark-storage")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}
