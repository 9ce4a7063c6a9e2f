package shift

import (
	"net/http"

	"cine/infras/otel"
	"cine/internal/domains/shift/model"
	"cine/internal/domains/shift/model/dto"
	"cine/internal/domains/shift/service"
	"cine/shared/constant"
	gDto "cine/shared/dto"
	"cine/shared/validator"
	"cine/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.EmployeeSchedule
	otel    otel.Otel
}

func New(service service.EmployeeSchedule, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/employee-schedules", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateEmployeeSchedule)
		routerGroup.Get("/", handler.GetEmployeeSchedules)
		routerGroup.Get("/{id}", handler.GetEmployeeScheduleByID)
		routerGroup.Put("/{id}", handler.UpdateEmployeeSchedule)
		routerGroup.Delete("/{id}", handler.DeleteEmployeeSchedule)
		routerGroup.Post("/{id}/outcome", handler.RecordOutcome)
	})
}

// CreateEmployeeSchedule books a shift for an employee.
func (handler *Handler) CreateEmployeeSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateEmployeeSchedule")
	defer scope.End()

	req := dto.CreateEmployeeScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create shift")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Shift created successfully")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetEmployeeSchedules retrieves shifts, filterable by employee, date and
// status.
func (handler *Handler) GetEmployeeSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEmployeeSchedules")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	if queryParams.SortBy == "" {
		queryParams.SortBy = model.FieldWorkDate
		queryParams.SortDir = gDto.SortDirAsc
	}

	employeeID := r.URL.Query().Get(model.FieldEmployeeID)
	workDate := r.URL.Query().Get(model.FieldWorkDate)
	status := r.URL.Query().Get(model.FieldStatus)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if employeeID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldEmployeeID,
			Operator: gDto.FilterOperatorEq,
			Value:    employeeID,
			Table:    model.TableName,
		})
	}

	if workDate != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldWorkDate,
			Operator: gDto.FilterOperatorEq,
			Value:    workDate,
			Table:    model.TableName,
		})
	}

	if status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	shifts, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get shifts")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Shifts retrieved successfully")

	response.WithJSON(w, http.StatusOK, shifts)
}

// GetEmployeeScheduleByID retrieves one shift.
func (handler *Handler) GetEmployeeScheduleByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEmployeeScheduleByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	shift, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get shift")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, shift)
}

// UpdateEmployeeSchedule re-validates the merged shift and moves it between
// employee boards on reassignment.
func (handler *Handler) UpdateEmployeeSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateEmployeeSchedule")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateEmployeeScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Update(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update shift")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Shift updated successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteEmployeeSchedule removes a shift and frees its slot.
func (handler *Handler) DeleteEmployeeSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteEmployeeSchedule")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete shift")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Shift deleted successfully")

	response.WithMessage(w, http.StatusOK, "Shift deleted successfully")
}

// RecordOutcome marks a scheduled shift completed or missed.
func (handler *Handler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RecordOutcome")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.RecordOutcomeRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.RecordOutcome(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to record shift outcome")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Shift outcome recorded successfully")

	response.WithJSON(w, http.StatusOK, res)
}
