package movie

import (
	"net/http"

	"cine/infras/otel"
	"cine/internal/domains/movie/model"
	"cine/internal/domains/movie/model/dto"
	"cine/internal/domains/movie/service"
	"cine/shared/constant"
	gDto "cine/shared/dto"
	"cine/shared/validator"
	"cine/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Movie
	otel    otel.Otel
}

func New(service service.Movie, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/movies", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateMovie)
		routerGroup.Get("/", handler.GetMovies)
		routerGroup.Get("/{id}", handler.GetMovieByID)
		routerGroup.Put("/{id}", handler.UpdateMovie)
		routerGroup.Delete("/{id}", handler.DeleteMovie)
		routerGroup.Post("/{id}/poster", handler.UploadPoster)
	})
}

// CreateMovie handles the creation of a new movie.
func (handler *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateMovie")
	defer scope.End()

	req := dto.CreateMovieRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create movie")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Movie created successfully")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetMovies retrieves all movies based on query parameters.
func (handler *Handler) GetMovies(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMovies")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	title := r.URL.Query().Get(model.FieldTitle)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if title != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldTitle,
			Operator: gDto.FilterOperatorLike,
			Value:    title,
			Table:    model.TableName,
		})
	}

	movies, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get movies")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Movies retrieved successfully")

	response.WithJSON(w, http.StatusOK, movies)
}

// GetMovieByID retrieves one movie.
func (handler *Handler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMovieByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	movie, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get movie")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, movie)
}

// UpdateMovie updates the descriptive fields of a movie.
func (handler *Handler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateMovie")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateMovieRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update movie")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Movie updated successfully")

	response.WithMessage(w, http.StatusOK, "Movie updated successfully")
}

// DeleteMovie removes a movie that no active schedule references.
func (handler *Handler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteMovie")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete movie")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Movie deleted successfully")

	response.WithMessage(w, http.StatusOK, "Movie deleted successfully")
}

// UploadPoster stores a poster image on S3 and persists its URL.
func (handler *Handler) UploadPoster(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadPoster")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	file, fileHeader, err := r.FormFile(constant.FormFile)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get file from form")

		response.WithError(w, err)

		return
	}
	defer file.Close()

	req := dto.UploadPosterRequest{
		Poster:     fileHeader,
		PosterFile: file,
	}

	res, err := handler.service.UploadPoster(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload poster")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Poster uploaded successfully")

	response.WithJSON(w, http.StatusOK, res)
}
