package ports

import "context"

// BackgroundWorker — фоновая задача приложения; Run блокируется до отмены ctx.
type BackgroundWorker interface {
	Run(ctx context.Context) error
	Close() error
}
