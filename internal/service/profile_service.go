package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/media"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

var ErrAvatarStorageDisabled = errors.New("profile picture storage is not configured")

type ProfileServiceConfig struct {
	Bucket string
}

// Profile is the caller's account together with their ledger.
type Profile struct {
	User   *domain.User   `json:"user"`
	Ledger *domain.Ledger `json:"ledger"`
}

type ProfileService struct {
	users     ports.UserRepository
	ledger    ports.LedgerRepository
	storage   ports.ObjectStorage
	processor media.Processor
	bucket    string
	logger    *zap.Logger
}

func NewProfileService(users ports.UserRepository, ledger ports.LedgerRepository, storage ports.ObjectStorage, processor media.Processor, logger *zap.Logger, cfg ProfileServiceConfig) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		users:     users,
		ledger:    ledger,
		storage:   storage,
		processor: processor,
		bucket:    cfg.Bucket,
		logger:    logger,
	}
}

func (s *ProfileService) Get(ctx context.Context, p domain.Principal) (*Profile, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("find user", err)
	}
	ledger, err := s.ledger.GetLedger(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("get ledger", err)
	}
	return &Profile{User: user, Ledger: ledger}, nil
}

func (s *ProfileService) UpdateName(ctx context.Context, p domain.Principal, name *string) (*domain.User, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	normalized, err := normalizeDisplayName(name)
	if err != nil {
		return nil, err
	}
	if normalized == nil {
		return nil, validationError("name is required")
	}
	user, err := s.users.UpdateProfile(ctx, p.UserID, normalized, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("update profile", err)
	}
	return user, nil
}

// UploadAvatar validates the image, stores it and points the profile at it. The
// object is removed again if the profile update fails.
func (s *ProfileService) UploadAvatar(ctx context.Context, p domain.Principal, upload media.Upload) (*domain.User, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	if s.storage == nil || s.processor == nil {
		return nil, ErrAvatarStorageDisabled
	}
	result, err := s.processor.Process(ctx, upload)
	if err != nil {
		if isImageError(err) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("process image: %w", err)
	}

	objectName := fmt.Sprintf("avatars/%s/%s%s", p.UserID, uuid.NewString(), result.Extension)
	url, err := s.storage.Upload(ctx, s.bucket, objectName, result.ContentType, result.Reader(), int64(len(result.Bytes)))
	if err != nil {
		return nil, storageError("upload avatar", err)
	}

	user, err := s.users.UpdateProfile(ctx, p.UserID, nil, &url)
	if err != nil {
		if rmErr := s.storage.Remove(ctx, s.bucket, objectName); rmErr != nil {
			s.logger.Warn("remove orphaned avatar failed", zap.String("object", objectName), zap.Error(rmErr))
		}
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("update profile image", err)
	}
	return user, nil
}

func isImageError(err error) bool {
	return errors.Is(err, media.ErrEmptyImage) ||
		errors.Is(err, media.ErrImageTooLarge) ||
		errors.Is(err, media.ErrUnsupportedImage) ||
		errors.Is(err, media.ErrImageDimensions)
}
