package router

import (
	"cine/internal/handlers/health"
	"cine/internal/handlers/movie"
	"cine/internal/handlers/room"
	"cine/internal/handlers/shift"
	"cine/internal/handlers/showtime"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Health   health.Handler
	Movie    movie.Handler
	Room     room.Handler
	Showtime showtime.Handler
	Shift    shift.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	r.DomainHandlers.Health.Router(router)

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Movie.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Showtime.Router(routerGroup)
		r.DomainHandlers.Shift.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
