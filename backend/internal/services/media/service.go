// Package media stores petition cover images in object storage.
package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

const (
	signedURLTTL  = 5 * time.Minute
	MaxImageBytes = 5 << 20
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AllowedImageTypes lists the accepted upload content types.
func AllowedImageTypes() []string {
	out := make([]string, 0, len(allowedImageTypes))
	for contentType := range allowedImageTypes {
		out = append(out, contentType)
	}
	sort.Strings(out)
	return out
}

type PetitionStore interface {
	GetByID(ctx context.Context, id string) (model.Petition, error)
	Update(ctx context.Context, p model.Petition, expectedVersion int64) (model.Petition, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	petitions PetitionStore
	storage   ObjectStorage
	logger    *zap.Logger
	now       func() time.Time
}

type Image struct {
	Key      string
	URL      string
	Petition model.Petition
}

func NewService(petitions PetitionStore, storage ObjectStorage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		petitions: petitions,
		storage:   storage,
		logger:    logger,
		now:       time.Now,
	}
}

// UploadPetitionImage replaces the cover image of a pending or rejected petition.
func (s *Service) UploadPetitionImage(ctx context.Context, actor model.Actor, petitionID, contentType string, body io.Reader, size int64) (Image, error) {
	petitionID = strings.TrimSpace(petitionID)
	if petitionID == "" {
		return Image{}, apperr.Validation("id", "petition id is required")
	}
	if strings.TrimSpace(actor.ID) == "" {
		return Image{}, apperr.ErrUnauthorizedAccess
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return Image{}, apperr.Validation("image", "image must be jpeg, png or webp")
	}
	if body == nil || size <= 0 {
		return Image{}, apperr.Validation("image", "image is empty")
	}
	if size > MaxImageBytes {
		return Image{}, apperr.Validation("image", fmt.Sprintf("image must be at most %d bytes", MaxImageBytes))
	}
	if s.petitions == nil || s.storage == nil {
		return Image{}, apperr.Dependency("upload petition image", errors.New("media dependencies are not configured"))
	}

	current, err := s.petitions.GetByID(ctx, petitionID)
	if err != nil {
		return Image{}, apperr.Store("load petition", err)
	}
	if current.CreatorID != actor.ID {
		return Image{}, apperr.ErrUnauthorizedAccess
	}
	if current.Status != enums.PetitionStatusPending && current.Status != enums.PetitionStatusRejected {
		return Image{}, fmt.Errorf("petition is %s: %w", current.Status, apperr.ErrInvalidPetitionState)
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Image{}, apperr.Dependency("ensure bucket", err)
	}

	key, err := buildImageObjectKey(petitionID, ext, s.now())
	if err != nil {
		return Image{}, apperr.Dependency("build object key", err)
	}
	if err := s.storage.Put(ctx, key, body, size, contentType); err != nil {
		return Image{}, apperr.Dependency("put petition image", err)
	}

	next := current.Clone()
	next.ImageKey = &key
	next.UpdatedAt = s.now().UTC()
	updated, err := s.petitions.Update(ctx, next, current.Version)
	if err != nil {
		s.cleanup(ctx, key)
		return Image{}, apperr.Store("attach petition image", err)
	}
	if current.ImageKey != nil {
		s.cleanup(ctx, *current.ImageKey)
	}

	url, err := s.storage.PresignGet(ctx, key, signedURLTTL)
	if err != nil {
		return Image{}, apperr.Dependency("presign petition image", err)
	}

	return Image{Key: key, URL: url, Petition: updated}, nil
}

func (s *Service) cleanup(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("delete petition image failed", zap.String("key", key), zap.Error(err))
	}
}

func buildImageObjectKey(petitionID, ext string, now time.Time) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	stamp := now.UTC().Format("20060102T150405")
	return path.Join("petitions", petitionID, fmt.Sprintf("%s_%s%s", stamp, hex.EncodeToString(rnd), ext)), nil
}
