package ports

import (
	"context"
	"time"
)

// CacheStore — общий кэш байтовых значений с абсолютным TTL.
// Реализации: redis, postgres, memory. Должны быть потокобезопасны.
type CacheStore interface {
	// Get — (value, true, nil) при попадании, (nil, false, nil) при промахе или истечении,
	// (nil, false, err) если хранилище недоступно.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set — записать значение; срок жизни отсчитывается от момента записи и чтением не продлевается.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping — проверка доступности (readiness).
	Ping(ctx context.Context) error

	Close() error
}
