package controllers

import (
	"net/http"

	"github.com/danielcastano/mercato-backend/api/responses"
	"github.com/danielcastano/mercato-backend/api/validators"
	"github.com/danielcastano/mercato-backend/internal/media"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// MediaController serves image upload and removal for shopkeepers.
type MediaController struct {
	service media.Service
	logg    *logger.Logger
}

func NewMediaController(service media.Service, logg *logger.Logger) *MediaController {
	return &MediaController{service: service, logg: logg}
}

// Upload accepts a multipart form with a "file" part and an optional "kind"
// field (products, shops, categories).
func (c *MediaController) Upload(w http.ResponseWriter, r *http.Request) {
	if _, err := authenticatedUser(r); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		responses.WriteError(r.Context(), c.logg, w,
			pkgerrors.New(pkgerrors.CodeValidation, "multipart form required"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w,
			pkgerrors.New(pkgerrors.CodeValidation, "file part is required"))
		return
	}
	defer file.Close()

	result, err := c.service.Upload(r.Context(), media.UploadInput{
		Kind:        media.Kind(r.FormValue("kind")),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, "Image uploaded", result)
}

type removeMediaRequest struct {
	ObjectName string `json:"object_name" validate:"required"`
}

func (c *MediaController) Remove(w http.ResponseWriter, r *http.Request) {
	if _, err := authenticatedUser(r); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	var body removeMediaRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	if err := c.service.Remove(r.Context(), body.ObjectName); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Image removed", nil)
}
