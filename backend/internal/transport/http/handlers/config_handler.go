package handlers

import (
	"net/http"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/config"
	mediasvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/media"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

// ConfigHandler exposes the limits the frontend enforces before calling the API.
type ConfigHandler struct {
	appeals config.AppealsConfig
}

func NewConfigHandler(appeals config.AppealsConfig) *ConfigHandler {
	return &ConfigHandler{appeals: appeals}
}

func (h *ConfigHandler) Handle(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.ConfigResponse{
		Appeals: dto.ConfigAppealsResponse{
			MessagesPerMinute:    h.appeals.MessagesPerMinute,
			MessagesPer10Minutes: h.appeals.MessagesPer10Minutes,
		},
		Images: dto.ConfigImagesResponse{
			MaxBytes:     mediasvc.MaxImageBytes,
			AllowedTypes: mediasvc.AllowedImageTypes(),
		},
	})
}
