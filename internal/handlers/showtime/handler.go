package showtime

import (
	"net/http"

	"cine/infras/otel"
	"cine/internal/domains/showtime/model"
	"cine/internal/domains/showtime/model/dto"
	"cine/internal/domains/showtime/service"
	"cine/shared/constant"
	gDto "cine/shared/dto"
	"cine/shared/validator"
	"cine/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	requestParamFrom = "from"
	requestParamTo   = "to"
)

type Handler struct {
	service service.Schedule
	otel    otel.Otel
}

func New(service service.Schedule, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/schedules", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSchedule)
		routerGroup.Get("/", handler.GetSchedules)
		routerGroup.Get("/{id}", handler.GetScheduleByID)
		routerGroup.Put("/{id}", handler.UpdateSchedule)
		routerGroup.Delete("/{id}", handler.DeleteSchedule)
	})
}

// CreateSchedule books a movie into a room for a time slot.
func (handler *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSchedule")
	defer scope.End()

	req := dto.CreateScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create schedule")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedule created successfully")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetSchedules retrieves active schedules, filterable by movie, room and
// start-time range, ordered by start time unless the caller overrides it.
func (handler *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSchedules")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	if queryParams.SortBy == "" {
		queryParams.SortBy = model.FieldStartTime
		queryParams.SortDir = gDto.SortDirAsc
	}

	movieID := r.URL.Query().Get(model.FieldMovieID)
	roomID := r.URL.Query().Get(model.FieldRoomID)
	from := r.URL.Query().Get(requestParamFrom)
	to := r.URL.Query().Get(requestParamTo)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if movieID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldMovieID,
			Operator: gDto.FilterOperatorEq,
			Value:    movieID,
			Table:    model.TableName,
		})
	}

	if roomID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldRoomID,
			Operator: gDto.FilterOperatorEq,
			Value:    roomID,
			Table:    model.TableName,
		})
	}

	if from != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  requestParamFrom,
			Field:    model.FieldStartTime,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    from,
			Table:    model.TableName,
		})
	}

	if to != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  requestParamTo,
			Field:    model.FieldStartTime,
			Operator: gDto.FilterOperatorLess,
			Value:    to,
			Table:    model.TableName,
		})
	}

	schedules, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedules")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedules retrieved successfully")

	response.WithJSON(w, http.StatusOK, schedules)
}

// GetScheduleByID retrieves one active schedule.
func (handler *Handler) GetScheduleByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetScheduleByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	schedule, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedule")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, schedule)
}

// UpdateSchedule re-validates the merged slot and moves the reservation if
// the room changed.
func (handler *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSchedule")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Update(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update schedule")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedule updated successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteSchedule soft deletes a schedule and frees its slot.
func (handler *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSchedule")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete schedule")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedule deleted successfully")

	response.WithMessage(w, http.StatusOK, "Schedule deleted successfully")
}
