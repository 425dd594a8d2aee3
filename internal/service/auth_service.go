package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"deskhive/internal/domain"
	"deskhive/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService is the access-control layer: it exchanges credentials for
// bearer tokens, resolves tokens back into a strongly-typed Actor exactly
// once per request, and handles self-registration via invitation codes.
// Everything downstream trusts the Actor it produces.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)

	// Authenticate validates a bearer token and returns the resolved actor
	// plus the session id. Any failure is domain.ErrUnauthorized.
	Authenticate(ctx context.Context, token string) (domain.Actor, string, error)
}

type authService struct {
	users     repository.UsersRepository
	companies repository.CompaniesRepository
	sessions  repository.SessionsRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthService creates the access-control service.
func NewAuthService(
	users repository.UsersRepository,
	companies repository.CompaniesRepository,
	sessions repository.SessionsRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		users:     users,
		companies: companies,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// LoginRequest credential exchange.
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse issued token and the resolved identity.
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expiresAt"`
}

// RegisterRequest self-registration with a company invitation code.
type RegisterRequest struct {
	InvitationCode string
	Email          string
	Password       string
}

// RegisterResponse new account id.
type RegisterResponse struct {
	UserID string `json:"userId"`
}

// accessClaims JWT payload; sid ties the token to a user_sessions row.
type accessClaims struct {
	SessionID string `json:"sid"`
	CompanyID string `json:"cid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password for storage and comparison.
// The credential scheme is deliberately simple; the platform treats
// credential strength as the deployment's concern (fronting IdP, TLS).
func HashPassword(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return sum[:]
}

// ============================================
// Operations
// ============================================

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("login lookup failed: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(user.PasswordHash, HashPassword(req.Password)) != 1 {
		return nil, domain.ErrUnauthorized
	}

	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := accessClaims{
		SessionID: sessionID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	err = s.sessions.CreateSession(ctx, &domain.UserSession{
		SessionID: sessionID,
		UserID:    user.UserID,
		Token:     token,
		Status:    domain.SessionActive,
		ExpiresAt: sql.NullTime{Time: expiresAt, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.UserID); err != nil {
		// Bookkeeping only; the login already succeeded.
		s.logger.Warn("failed to update last_login_at",
			zap.String("user_id", user.UserID),
			zap.Error(err),
		)
	}

	return &LoginResponse{
		Token:     token,
		UserID:    user.UserID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.SetSessionStatus(ctx, sessionID, domain.SessionInactive); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (domain.Actor, string, error) {
	if tokenString == "" {
		return domain.Actor{}, "", domain.ErrUnauthorized
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return domain.Actor{}, "", domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || claims.SessionID == "" || claims.Subject == "" {
		return domain.Actor{}, "", domain.ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		return domain.Actor{}, "", domain.ErrUnauthorized
	}
	if session.Status != domain.SessionActive || session.UserID != claims.Subject {
		return domain.Actor{}, "", domain.ErrUnauthorized
	}
	if session.ExpiresAt.Valid && session.ExpiresAt.Time.Before(time.Now()) {
		if err := s.sessions.SetSessionStatus(ctx, session.SessionID, domain.SessionExpired); err != nil {
			s.logger.Debug("failed to expire session", zap.Error(err))
		}
		return domain.Actor{}, "", domain.ErrUnauthorized
	}

	// Re-resolve the user so deactivated/deleted accounts lose access
	// immediately, not at token expiry.
	user, err := s.users.GetUser(ctx, claims.CompanyID, claims.Subject)
	if err != nil || !user.IsActive {
		return domain.Actor{}, "", domain.ErrUnauthorized
	}

	actor := domain.Actor{
		UserID:    user.UserID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	}
	return actor, session.SessionID, nil
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.InvitationCode == "" || email == "" || len(req.Password) < 8 {
		return nil, fmt.Errorf("invitation code, email and a password of at least 8 characters are required")
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, fmt.Errorf("invalid email address")
	}

	company, err := s.companies.GetCompanyByInvitationCode(ctx, req.InvitationCode)
	if err != nil {
		return nil, err
	}

	domains, err := s.companies.ListActiveDomains(ctx, company.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company domains: %w", err)
	}
	emailDomain := email[at:] // includes '@', matching the normalized column
	allowed := false
	for _, d := range domains {
		if strings.EqualFold(d.Domain, emailDomain) {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("email domain %s is not allowed for this company", emailDomain)
	}

	userID, err := s.users.CreateUser(ctx, &domain.User{
		CompanyID:    company.CompanyID,
		Email:        email,
		PasswordHash: HashPassword(req.Password),
		Role:         domain.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", userID),
		zap.String("company_id", company.CompanyID),
	)
	return &RegisterResponse{UserID: userID}, nil
}
