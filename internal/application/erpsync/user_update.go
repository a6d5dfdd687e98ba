package erpsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	domain "github.com/storefront/backend/internal/domain/erpsync"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserUpdate is the recognized shape of an inbound ERP user message
type UserUpdate struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	ERPID  string `json:"erp_id"`
	Status string `json:"status"`
}

// UserUpdateService applies inbound ERP identity updates to users. Applying
// the same message twice is a no-op the second time, which makes at-least-
// once delivery safe.
type UserUpdateService struct {
	users  domain.UserRepository
	logger *zap.Logger
}

// NewUserUpdateService creates a user update service
func NewUserUpdateService(users domain.UserRepository, logger *zap.Logger) *UserUpdateService {
	return &UserUpdateService{users: users, logger: logger.Named("erp-user-update")}
}

// Apply writes the ERP identifier and optional status onto the referenced
// user. Missing identifiers and unknown users are clean no-ops.
func (s *UserUpdateService) Apply(ctx context.Context, update *UserUpdate) error {
	if update.User.ID == "" || update.ERPID == "" {
		s.logger.Debug("incomplete user update ignored")
		return nil
	}

	userID, err := uuid.Parse(update.User.ID)
	if err != nil {
		s.logger.Debug("user update with malformed id ignored", zap.String("id", update.User.ID))
		return nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("user update for unknown user ignored", zap.String("user_id", update.User.ID))
			return nil
		}
		return fmt.Errorf("find user %s: %w", update.User.ID, err)
	}

	if !user.ApplyERPIdentity(update.ERPID, update.Status) {
		return nil
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user %s: %w", update.User.ID, err)
	}

	s.logger.Info("user erp identity updated",
		zap.String("user_id", update.User.ID),
		zap.String("erp_id", update.ERPID),
	)
	return nil
}
