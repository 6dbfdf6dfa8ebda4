// Package account implements player registration, authentication and
// account maintenance. Every operation reports a per-operation status code;
// errors are returned only for infrastructure failures.
package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/topicrooms/internal/dependencies/clock"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/services/session"
	"github.com/mcoot/topicrooms/internal/status"
	"github.com/mcoot/topicrooms/internal/storage"
	"github.com/mcoot/topicrooms/internal/validation"
)

// Service handles the player account lifecycle
type Service struct {
	storage   storage.Storage
	sessions  *session.Manager
	validator *validation.Validator
	hasher    PasswordHasher
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a new account service
func New(
	storage storage.Storage,
	sessions *session.Manager,
	validator *validation.Validator,
	hasher PasswordHasher,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   storage,
		sessions:  sessions,
		validator: validator,
		hasher:    hasher,
		clock:     clock,
		logger:    logger,
	}
}

// Register creates a new player account
func (s *Service) Register(ctx context.Context, id, password string) (status.Register, error) {
	if !s.validator.IsPresent(id, password) {
		return status.RegisterMissingInput, nil
	}
	if !s.validator.ValidateID(id) {
		return status.RegisterInvalidIDFormat, nil
	}
	if !s.validator.ValidatePassword(password) {
		return status.RegisterInvalidPasswordFormat, nil
	}

	playerID := model.PlayerID(id)
	_, err := s.storage.GetPlayer(ctx, playerID)
	if err == nil {
		return status.RegisterDuplicateID, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return status.RegisterServerError, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return status.RegisterServerError, err
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:           playerID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store enforces uniqueness for concurrent registrations
	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, model.ErrPlayerExists) {
			return status.RegisterDuplicateID, nil
		}
		return status.RegisterServerError, err
	}

	s.logger.Info("player registered", "player_id", playerID)
	return status.RegisterSuccess, nil
}

// Login checks credentials and returns the player's public identity. The
// caller binds the identity to a session.
func (s *Service) Login(ctx context.Context, id, password string) (*model.PlayerIdentity, status.Login, error) {
	if !s.validator.IsPresent(id, password) {
		return nil, status.LoginMissingInput, nil
	}

	player, err := s.storage.GetPlayer(ctx, model.PlayerID(id))
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, status.LoginIDNotFound, nil
		}
		return nil, status.LoginServerError, err
	}

	// Checked after the lookup, so unknown ids report IDNotFound first
	if !s.validator.ValidateID(id) {
		return nil, status.LoginInvalidIDFormat, nil
	}

	ok, err := s.hasher.Verify(password, player.PasswordHash)
	if err != nil {
		return nil, status.LoginServerError, err
	}
	if !ok {
		return nil, status.LoginWrongPassword, nil
	}

	if s.hasher.NeedsUpgrade(player.PasswordHash) {
		s.upgradeHash(ctx, player.ID, password)
	}

	identity := player.Identity()
	return &identity, status.LoginSuccess, nil
}

func (s *Service) upgradeHash(ctx context.Context, id model.PlayerID, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.storage.UpdatePlayerPassword(ctx, id, hash, s.clock.Now())
	}
	if err != nil {
		s.logger.Warn("password hash upgrade failed", "player_id", id, "error", err)
		return
	}
	s.logger.Info("password hash upgraded", "player_id", id)
}

// Logout destroys the session bound to token
func (s *Service) Logout(ctx context.Context, token string) (status.Logout, error) {
	err := s.sessions.Destroy(ctx, token)
	if errors.Is(err, session.ErrNoSession) {
		return status.LogoutUnauthenticated, nil
	}
	if err != nil {
		return status.LogoutServerError, err
	}
	return status.LogoutSuccess, nil
}

// ChangePassword replaces the player's password. sess must belong to the player.
func (s *Service) ChangePassword(ctx context.Context, sess *session.Session, id, oldPassword, newPassword string) (status.ChangePassword, error) {
	if !sess.BelongsTo(model.PlayerID(id)) {
		return status.ChangePasswordUnauthenticated, nil
	}
	if !s.validator.IsPresent(id, oldPassword, newPassword) {
		return status.ChangePasswordMissingInput, nil
	}
	if !s.validator.ValidatePassword(newPassword) {
		return status.ChangePasswordInvalidNewFormat, nil
	}

	player, err := s.storage.GetPlayer(ctx, model.PlayerID(id))
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return status.ChangePasswordWrongOldPassword, nil
		}
		return status.ChangePasswordDBError, err
	}

	ok, err := s.hasher.Verify(oldPassword, player.PasswordHash)
	if err != nil {
		return status.ChangePasswordServerError, err
	}
	if !ok {
		return status.ChangePasswordWrongOldPassword, nil
	}

	if newPassword == oldPassword {
		return status.ChangePasswordNoChange, nil
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return status.ChangePasswordServerError, err
	}

	if err := s.storage.UpdatePlayerPassword(ctx, player.ID, hash, s.clock.Now()); err != nil {
		return status.ChangePasswordDBError, err
	}

	s.logger.Info("password changed", "player_id", player.ID)
	return status.ChangePasswordSuccess, nil
}

// DeletePlayer removes the account and every session bound to it. sess must
// belong to the player.
func (s *Service) DeletePlayer(ctx context.Context, sess *session.Session, id, password string) (status.DeletePlayer, error) {
	if !sess.BelongsTo(model.PlayerID(id)) {
		return status.DeletePlayerUnauthenticated, nil
	}
	if !s.validator.IsPresent(id, password) {
		return status.DeletePlayerMissingInput, nil
	}

	player, err := s.storage.GetPlayer(ctx, model.PlayerID(id))
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return status.DeletePlayerIDNotFound, nil
		}
		return status.DeletePlayerServerError, err
	}

	if !s.validator.ValidateID(id) {
		return status.DeletePlayerInvalidIDFormat, nil
	}

	ok, err := s.hasher.Verify(password, player.PasswordHash)
	if err != nil {
		return status.DeletePlayerServerError, err
	}
	if !ok {
		return status.DeletePlayerWrongPassword, nil
	}

	if err := s.storage.DeletePlayer(ctx, player.ID); err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return status.DeletePlayerIDNotFound, nil
		}
		return status.DeletePlayerServerError, err
	}

	if err := s.sessions.DestroyPlayer(ctx, player.ID); err != nil {
		return status.DeletePlayerServerError, err
	}

	s.logger.Info("player deleted", "player_id", player.ID)
	return status.DeletePlayerSuccess, nil
}
