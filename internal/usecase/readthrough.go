package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/Gunvolt24/movies/internal/cache"
	"github.com/Gunvolt24/movies/internal/domain"
	"github.com/Gunvolt24/movies/internal/ports"
	"golang.org/x/sync/singleflight"
)

// sharedLoadTimeout — предел склеенной загрузки: она не зависит от отмены
// запроса, который её начал.
const sharedLoadTimeout = 30 * time.Second

// readThrough — общий путь чтения: кэш -> (промах) загрузка -> запись с TTL.
// Сбои кэша не ломают запрос: недоступный кэш считается промахом без обратной записи,
// нечитаемая запись считается промахом, ошибка записи только логируется.
type readThrough struct {
	store ports.CacheStore
	log   ports.Logger
	ttl   time.Duration

	// group — склейка одновременных промахов по ключу; nil — каждый промах грузит сам.
	group *singleflight.Group
}

func fetchThrough[T any](
	ctx context.Context,
	rt *readThrough,
	key string,
	kind cache.Kind,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	writeBack := true
	raw, found, err := rt.store.Get(ctx, key)
	switch {
	case err != nil:
		rt.log.Warnf(ctx, "cache unavailable key=%s, reading through without write-back: %v", key, err)
		writeBack = false
	case found:
		v, decErr := cache.Decode[T](kind, raw)
		if decErr == nil {
			return v, nil
		}
		rt.log.Warnf(ctx, "cache entry key=%s is unreadable, treating as miss: %v", key, decErr)
	}

	loadAndStore := func(ctx context.Context) (T, error) {
		v, err := load(ctx)
		if err != nil {
			return zero, err
		}
		if writeBack {
			rt.put(ctx, key, kind, v)
		}
		return v, nil
	}

	if rt.group == nil {
		return loadAndStore(ctx)
	}

	// Общая загрузка идёт на контексте без отмены (значения и спан сохраняются),
	// каждый участник ждёт её не дольше своего ctx.
	ch := rt.group.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return loadAndStore(sctx)
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		v, ok := r.Val.(T)
		if !ok {
			return zero, errors.New("coalesced load returned unexpected type")
		}
		if r.Shared {
			rt.log.Infof(ctx, "cache miss key=%s coalesced with an in-flight load", key)
			return detach(v), nil
		}
		return v, nil
	}
}

// detach — у каждого участника склеенной загрузки свой срез.
func detach[T any](v T) T {
	if list, ok := any(v).([]domain.Movie); ok {
		return any(slices.Clone(list)).(T)
	}
	return v
}

func (rt *readThrough) put(ctx context.Context, key string, kind cache.Kind, v any) {
	raw, err := cache.Encode(kind, v)
	if err != nil {
		// nil не кэшируем
		rt.log.Warnf(ctx, "cache encode key=%s skipped: %v", key, err)
		return
	}
	if err := rt.store.Set(ctx, key, raw, rt.ttl); err != nil {
		rt.log.Warnf(ctx, "cache set key=%s failed: %v", key, err)
	}
}
