package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/metrics"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

// LedgerService manages a user's favorites and visit history. Every mutation is
// a single repository call so concurrent requests for the same user converge.
type LedgerService struct {
	ledger ports.LedgerRepository
	logger *zap.Logger
	limit  int
}

func NewLedgerService(ledger ports.LedgerRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{ledger: ledger, logger: logger, limit: domain.HistoryLimit}
}

func (s *LedgerService) AddFavorite(ctx context.Context, p domain.Principal, placeID uuid.UUID) ([]uuid.UUID, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	favorites, err := s.ledger.AddFavorite(ctx, p.UserID, placeID)
	metrics.ObserveLedgerOperation("add_favorite", err)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, storageError("add favorite", err)
	}
	return favorites, nil
}

func (s *LedgerService) RemoveFavorite(ctx context.Context, p domain.Principal, placeID uuid.UUID) ([]uuid.UUID, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	favorites, err := s.ledger.RemoveFavorite(ctx, p.UserID, placeID)
	metrics.ObserveLedgerOperation("remove_favorite", err)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("remove favorite", err)
	}
	return favorites, nil
}

func (s *LedgerService) RecordVisit(ctx context.Context, p domain.Principal, placeID uuid.UUID) ([]uuid.UUID, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	history, err := s.ledger.RecordVisit(ctx, p.UserID, placeID, s.limit)
	metrics.ObserveLedgerOperation("record_visit", err)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, storageError("record visit", err)
	}
	return history, nil
}

func (s *LedgerService) ClearHistory(ctx context.Context, p domain.Principal) ([]uuid.UUID, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	err := s.ledger.ClearHistory(ctx, p.UserID)
	metrics.ObserveLedgerOperation("clear_history", err)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("clear history", err)
	}
	return []uuid.UUID{}, nil
}

func (s *LedgerService) Get(ctx context.Context, p domain.Principal) (*domain.Ledger, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	ledger, err := s.ledger.GetLedger(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("get ledger", err)
	}
	return ledger, nil
}
