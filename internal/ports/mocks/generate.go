//go:generate mockgen -source=../cache_store.go        -destination=./mock_cache_store.go        -package=mocks
//go:generate mockgen -source=../movie_provider.go     -destination=./mock_movie_provider.go     -package=mocks
//go:generate mockgen -source=../movie_read_service.go -destination=./mock_movie_read_service.go -package=mocks
//go:generate mockgen -source=../logger.go             -destination=./mock_logger.go             -package=mocks
//go:generate mockgen -source=../background_worker.go  -destination=./mock_background_worker.go  -package=mocks

package mocks
