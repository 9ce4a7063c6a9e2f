//go:build wireinject
// +build wireinject

package di

import (
	"cine/config"
	"cine/infras/kafka"
	"cine/infras/otel"
	"cine/infras/postgres"
	"cine/infras/redis"
	"cine/infras/s3"
	"cine/shared/cache"
	"cine/transport/http"
	"cine/transport/http/middleware"
	"cine/transport/http/router"

	movieRepository "cine/internal/domains/movie/repository"
	movieService "cine/internal/domains/movie/service"
	roomRepository "cine/internal/domains/room/repository"
	roomService "cine/internal/domains/room/service"
	shiftRepository "cine/internal/domains/shift/repository"
	showtimeRepository "cine/internal/domains/showtime/repository"

	healthHandler "cine/internal/handlers/health"
	movieHandler "cine/internal/handlers/movie"
	roomHandler "cine/internal/handlers/room"
	shiftHandler "cine/internal/handlers/shift"
	showtimeHandler "cine/internal/handlers/showtime"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var movieDomain = wire.NewSet(
	movieRepository.New,
	movieService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var showtimeDomain = wire.NewSet(
	showtimeRepository.New,
	provideScheduleService,
)

var shiftDomain = wire.NewSet(
	shiftRepository.New,
	provideShiftService,
)

var domains = wire.NewSet(
	movieDomain,
	roomDomain,
	showtimeDomain,
	shiftDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthHandler.New,
	movieHandler.New,
	roomHandler.New,
	shiftHandler.New,
	showtimeHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
