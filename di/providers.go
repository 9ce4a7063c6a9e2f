package di

import (
	"cine/config"
	"cine/infras/kafka"
	"cine/infras/otel"
	"cine/internal/ledger"
	"cine/shared/cache"

	movieRepository "cine/internal/domains/movie/repository"
	roomRepository "cine/internal/domains/room/repository"
	shiftRepository "cine/internal/domains/shift/repository"
	shiftService "cine/internal/domains/shift/service"
	showtimeRepository "cine/internal/domains/showtime/repository"
	showtimeService "cine/internal/domains/showtime/service"
)

// Each scheduling domain owns its reservation boards. Rooms and
// employees never share keys, so the sets stay independent.
func provideScheduleService(
	repo showtimeRepository.Schedule,
	movies movieRepository.Movie,
	rooms roomRepository.Room,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	events kafka.Client,
) showtimeService.Schedule {
	return showtimeService.New(repo, movies, rooms, ledger.NewSet(), cfg, cache, otel, events)
}

func provideShiftService(
	repo shiftRepository.EmployeeSchedule,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) shiftService.EmployeeSchedule {
	return shiftService.New(repo, ledger.NewSet(), cfg, cache, otel)
}
