package health

import (
	"net/http"

	"cine/infras/postgres"
	"cine/transport/http/response"

	"github.com/go-chi/chi/v5"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	db    *postgres.Connection
	redis *goRedis.Client
}

func New(db *postgres.Connection, redis *goRedis.Client) Handler {
	return Handler{
		db:    db,
		redis: redis,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/health", handler.HealthCheck)
}

// HealthCheck reports whether the service can reach its backing stores.
func (handler *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := handler.db.Read.PingContext(r.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed pinging postgres")

		response.WithUnhealthy(w)

		return
	}

	if err := handler.redis.Ping(r.Context()).Err(); err != nil {
		log.Error().Err(err).Msg("health check failed pinging redis")

		response.WithUnhealthy(w)

		return
	}

	response.WithMessage(w, http.StatusOK, "OK")
}
