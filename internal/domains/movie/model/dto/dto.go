package dto

import (
	"mime/multipart"

	"cine/internal/domains/movie/model"
	"cine/shared"
	gDto "cine/shared/dto"
	gModel "cine/shared/model"
	"cine/shared/timezone"

	"github.com/google/uuid"
)

type CreateMovieRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	Duration    int    `json:"duration" validate:"required,gt=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	TrailerURL  string `json:"trailer_url" validate:"omitempty,url"`
}

func (c *CreateMovieRequest) ToModel() model.Movie {
	return model.Movie{
		ID:          uuid.NewString(),
		Title:       c.Title,
		Description: c.Description,
		Duration:    c.Duration,
		ImageURL:    c.ImageURL,
		TrailerURL:  c.TrailerURL,
		Metadata: gModel.Metadata{
			CreatedAt: timezone.Now(),
			UpdatedAt: timezone.Now(),
		},
	}
}

// Duration is not updatable. Existing showtimes were validated against it.
type UpdateMovieRequest struct {
	Title       string `db:"title"       json:"title"       validate:"omitempty,min=1,max=200"`
	Description string `db:"description" json:"description" validate:"omitempty"`
	ImageURL    string `db:"image_url"   json:"image_url"   validate:"omitempty,url"`
	TrailerURL  string `db:"trailer_url" json:"trailer_url" validate:"omitempty,url"`
}

type MovieResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	ImageURL    string `json:"image_url"`
	TrailerURL  string `json:"trailer_url"`
	gDto.Metadata
}

func (r *MovieResponse) FromModel(model model.Movie) {
	r.ID = model.ID
	r.Title = model.Title
	r.Description = model.Description
	r.Duration = model.Duration
	r.ImageURL = model.ImageURL
	r.TrailerURL = model.TrailerURL
	r.Metadata.FromModel(model.Metadata)
}

type GetMoviesResponse struct {
	Movies    []MovieResponse `json:"movies"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetMoviesResponse) FromModels(models []model.Movie, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Movies = make([]MovieResponse, len(models))
	for i, m := range models {
		r.Movies[i].FromModel(m)
	}
}

type UploadPosterRequest struct {
	Poster     *multipart.FileHeader `json:"poster" validate:"required"`
	PosterFile multipart.File        `json:"-"`
}

type UploadPosterResponse struct {
	ImageURL string `json:"image_url"`
	FileName string `json:"file_name"`
}

func (r *UploadPosterResponse) FromModel(url, fileName string) {
	r.ImageURL = url
	r.FileName = fileName
}
