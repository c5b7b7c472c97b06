package cache

// Операции, под которыми лежат значения в кэше.
const (
	OpUpcomingMovies = "movies.upcoming"
	OpMovie          = "movie"
)

// Key — ключ вида "<операция>::<аргумент>". Разные операции и разные аргументы
// не пересекаются; префикс пространства имён добавляет хранилище.
func Key(op, arg string) string {
	return op + "::" + arg
}

func UpcomingMoviesKey(region string) string { return Key(OpUpcomingMovies, region) }

func MovieKey(movieID string) string { return Key(OpMovie, movieID) }
