package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/identity"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/infrastructure/auth"
)

// AuthService handles registration, login and token lifecycle.
// Login failures never reveal whether the email exists.
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	eventPublisher shared.EventPublisher
	tokenBlacklist auth.TokenBlacklist
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.UserRepository, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetTokenBlacklist enables session revocation on password change
func (s *AuthService) SetTokenBlacklist(blacklist auth.TokenBlacklist) {
	s.tokenBlacklist = blacklist
}

// Register creates a customer account and logs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != "" {
		if err := user.SetDisplayName(req.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, user)

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return s.issueTokens(ctx, user)
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warn("Login attempt for unknown email", zap.String("email", req.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.CanLogin() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to record login", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a fresh token pair.
// Email and role are re-read from storage so a role change or
// deactivation takes effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	return s.issueTokens(ctx, user)
}

// Me returns the current user's account
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// ChangePassword changes the current user's password
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save password change", zap.Error(err), zap.String("user_id", userID.String()))
		return err
	}

	// Cut every session issued before the rotation, the caller's
	// included. Clients must log in again with the new password.
	if s.tokenBlacklist != nil {
		ttl := s.jwtService.GetRefreshTokenExpiration()
		if err := s.tokenBlacklist.AddUserTokensToBlacklist(ctx, userID.String(), ttl); err != nil {
			s.logger.Warn("Failed to revoke existing sessions",
				zap.Error(err), zap.String("user_id", userID.String()))
		}
	}

	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// LinkTelegram associates a Telegram chat with the account
func (s *AuthService) LinkTelegram(ctx context.Context, userID uuid.UUID, chatID int64) error {
	if existing, err := s.userRepo.FindByTelegramChatID(ctx, chatID); err == nil && existing.ID != userID {
		return shared.NewDomainError("CHAT_ALREADY_LINKED", "This Telegram chat is linked to another account")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.LinkTelegram(chatID); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to link telegram chat", zap.Error(err), zap.String("user_id", userID.String()))
		return err
	}
	s.logger.Info("Telegram chat linked",
		zap.String("user_id", userID.String()),
		zap.Int64("chat_id", chatID))
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *identity.User) (*AuthResponse, error) {
	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("TOKEN_GENERATION_FAILED", "Failed to generate authentication tokens")
	}

	return &AuthResponse{
		User:   ToUserResponse(user),
		Tokens: tokens,
	}, nil
}

func (s *AuthService) publishEvents(ctx context.Context, user *identity.User) {
	if s.eventPublisher == nil {
		user.ClearDomainEvents()
		return
	}
	for _, event := range user.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish domain event",
				zap.Error(err),
				zap.String("event_type", event.EventType()))
		}
	}
	user.ClearDomainEvents()
}
