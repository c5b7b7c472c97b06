package ports

import "context"

// Logger — контракт логгера для сервиса, кэша и транспорта.
// Метаданные запроса (request_id, trace_id) реализация берёт из ctx.
type Logger interface {
	Infof(ctx context.Context, format string, args ...any)  // попадания/промахи кэша, обращения к TMDB
	Warnf(ctx context.Context, format string, args ...any)  // деградация: кэш недоступен, фильм не получен
	Errorf(ctx context.Context, format string, args ...any) // отказ запроса
}
