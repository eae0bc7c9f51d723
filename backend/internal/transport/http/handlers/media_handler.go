package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	mediasvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/media"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

// multipart framing on top of the image itself
const maxUploadOverhead = 1 << 20

type ImageUploader interface {
	UploadPetitionImage(ctx context.Context, actor model.Actor, petitionID, contentType string, body io.Reader, size int64) (mediasvc.Image, error)
}

type MediaHandler struct {
	service ImageUploader
}

func NewMediaHandler(service ImageUploader) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) PetitionImageUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	limit := int64(mediasvc.MaxImageBytes + maxUploadOverhead)
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	img, err := h.service.UploadPetitionImage(r.Context(), actor, chi.URLParam(r, "id"), contentType, file, header.Size)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PetitionImageResponse{
		Key:      img.Key,
		URL:      img.URL,
		Petition: dto.NewPetitionResponse(img.Petition),
	})
}
