package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/corsair/backend/internal/domain/identity"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/infrastructure/auth"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// MaxLoginAttempts is the number of failed logins before the lock
	MaxLoginAttempts int
	// LockDuration is how long the account stays locked
	LockDuration time.Duration
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService issues, rotates and revokes owner tokens. It never sees
// expedition owner keys; those travel per request and are fingerprint-checked
// by the expedition services.
type AuthService struct {
	ownerRepo  identity.OwnerRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	ownerRepo identity.OwnerRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		ownerRepo:  ownerRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Register creates an owner account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*OwnerResponse, error) {
	owner, err := identity.NewOwner(req.Username, req.DisplayName, req.Password)
	if err != nil {
		return nil, err
	}

	taken, err := s.ownerRepo.ExistsByUsername(ctx, owner.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewConflictError("USERNAME_TAKEN", "Username is already taken")
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		// The unique index resolves registration races the pre-check missed
		if shared.IsKind(err, shared.KindConflict) {
			return nil, shared.NewConflictError("USERNAME_TAKEN", "Username is already taken")
		}
		return nil, err
	}

	s.logger.Info("Owner registered",
		zap.String("owner_ref", owner.ID.String()),
		zap.String("username", owner.Username),
	)

	resp := ToOwnerResponse(owner)
	return &resp, nil
}

// Login authenticates an owner and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	owner, err := s.ownerRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if shared.IsKind(err, shared.KindNotFound) {
			s.logger.Warn("Login for unknown username", zap.String("username", req.Username))
			return nil, shared.NewSecurityError("INVALID_CREDENTIALS", "Invalid username or password")
		}
		return nil, err
	}

	if owner.IsLocked() {
		s.logger.Warn("Login attempt for locked account", zap.String("username", owner.Username))
		return nil, shared.NewSecurityError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
	}

	if !owner.VerifyPassword(req.Password) {
		locked := owner.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.ownerRepo.Update(ctx, owner); err != nil {
			s.logger.Error("Failed to record login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after repeated failures",
				zap.String("username", owner.Username),
				zap.Int("attempts", owner.FailedAttempts),
			)
			return nil, shared.NewSecurityError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		return nil, shared.NewSecurityError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(owner.ID, owner.Username)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewUpstreamError("TOKEN_ISSUE_FAILED", "Failed to issue authentication tokens")
	}

	owner.RecordLoginSuccess()
	if err := s.ownerRepo.Update(ctx, owner); err != nil {
		// The login already succeeded; losing the bookkeeping update is tolerable
		s.logger.Error("Failed to record login success", zap.Error(err))
	}

	s.logger.Info("Owner logged in",
		zap.String("owner_ref", owner.ID.String()),
		zap.String("username", owner.Username),
	)

	return &LoginResponse{
		Token: ToTokenResponse(tokenPair),
		Owner: ToOwnerResponse(owner),
	}, nil
}

// Refresh rotates a token pair. The presented refresh token is revoked so it
// cannot be replayed after rotation.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !revoked {
		revoked, err = s.blacklist.IsOwnerRevoked(ctx, claims.OwnerRef, claims.GetIssuedAtTime())
		if err != nil {
			return nil, err
		}
	}
	if revoked {
		return nil, shared.NewSecurityError("TOKEN_REVOKED", "Refresh token has been revoked")
	}

	ownerRef, err := claims.GetOwnerUUID()
	if err != nil {
		return nil, shared.NewSecurityError("TOKEN_INVALID", "Invalid owner reference in token")
	}

	owner, err := s.ownerRepo.FindByID(ctx, ownerRef)
	if err != nil {
		if shared.IsKind(err, shared.KindNotFound) {
			return nil, shared.NewSecurityError("TOKEN_INVALID", "Owner no longer exists")
		}
		return nil, err
	}
	if owner.IsLocked() {
		return nil, shared.NewSecurityError("ACCOUNT_LOCKED", "Account is locked")
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke rotated refresh token",
			zap.String("owner_ref", claims.OwnerRef),
			zap.Error(err),
		)
	}

	resp := ToTokenResponse(tokenPair)
	return &resp, nil
}

// Logout revokes the presented access token for its remaining lifetime.
// With Everywhere set, every token the owner holds is cut off as well.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, req LogoutRequest) error {
	if claims == nil {
		return shared.ErrUnauthorized
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return err
	}

	if req.Everywhere {
		// The cut-off must outlive the longest-lived token still in flight
		if err := s.blacklist.RevokeOwner(ctx, claims.OwnerRef, s.jwtService.GetRefreshTokenExpiration()); err != nil {
			return err
		}
	}

	s.logger.Info("Owner logged out",
		zap.String("owner_ref", claims.OwnerRef),
		zap.Bool("everywhere", req.Everywhere),
	)
	return nil
}

// mapTokenError translates JWT validation errors into domain errors
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewSecurityError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewSecurityError("TOKEN_MAX_REFRESH", "Maximum refresh count exceeded. Please log in again")
	default:
		return shared.NewSecurityError("TOKEN_INVALID", "Invalid refresh token")
	}
}
