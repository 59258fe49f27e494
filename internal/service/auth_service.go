package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/admitra/portal-backend/internal/config"
	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active")
	ErrSessionInvalidated   = errors.New("session no longer active")
)

// TokenType distinguishes applicant vs staff tokens.
type TokenType string

const (
	TokenTypeApplicant TokenType = "applicant"
	TokenTypeStaff     TokenType = "staff"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType       `json:"token_type"`
	UserID    int64           `json:"user_id"`
	Role      model.StaffRole `json:"role,omitempty"` // Staff only
}

// AuthService handles authentication, JWT, and session management.
type AuthService struct {
	cfg        *config.Config
	rdb        *redis.Client
	applicants *repository.ApplicantRepository
	staff      *repository.StaffRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, applicants *repository.ApplicantRepository, staff *repository.StaffRepository) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, applicants: applicants, staff: staff}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// RegisterApplicant creates an applicant account with a hashed password.
func (s *AuthService) RegisterApplicant(ctx context.Context, name, phone, password string) (*model.Applicant, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &model.Applicant{Name: name, Phone: phone, Password: hash}
	if err := s.applicants.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// LoginApplicant verifies phone and password and returns a session token.
// Exam takers are limited to one device at a time: a second login while a
// session is live is rejected.
func (s *AuthService) LoginApplicant(ctx context.Context, phone, password string) (string, *model.Applicant, error) {
	applicant, err := s.applicants.GetByPhone(ctx, phone)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := s.CheckPassword(applicant.Password, password); err != nil {
		return "", nil, err
	}

	token, err := s.generateApplicantToken(ctx, applicant.ID)
	if err != nil {
		return "", nil, err
	}
	return token, applicant, nil
}

// LoginStaff verifies email and password and returns a staff token.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (string, *model.Staff, error) {
	st, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := s.CheckPassword(st.Password, password); err != nil {
		return "", nil, err
	}

	token, err := s.generateStaffToken(st.ID, st.Role)
	if err != nil {
		return "", nil, err
	}
	return token, st, nil
}

// LogoutApplicant clears the applicant's Redis session so a new device can
// sign in.
func (s *AuthService) LogoutApplicant(ctx context.Context, applicantID int64) error {
	return s.rdb.Del(ctx, config.CacheKey.ApplicantSessionKey(applicantID)).Err()
}

// generateApplicantToken creates a JWT for an applicant and registers the
// session in Redis. Rejected if a session already exists.
func (s *AuthService) generateApplicantToken(ctx context.Context, applicantID int64) (string, error) {
	sessionKey := config.CacheKey.ApplicantSessionKey(applicantID)

	existing, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("check session: %w", err)
	}
	if existing != "" {
		return "", ErrSessionAlreadyActive
	}

	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(applicantID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: TokenTypeApplicant,
		UserID:    applicantID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// Session lives exactly as long as the JWT.
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// generateStaffToken creates a JWT for a staff account with its role embedded.
func (s *AuthService) generateStaffToken(staffID int64, role model.StaffRole) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(staffID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: TokenTypeStaff,
		UserID:    staffID,
		Role:      role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateApplicantSession checks that the token's JTI matches the single
// live session in Redis. Tokens from earlier logins fail this check even
// though they are still cryptographically valid.
func (s *AuthService) ValidateApplicantSession(ctx context.Context, applicantID int64, jti string) error {
	sessionKey := config.CacheKey.ApplicantSessionKey(applicantID)
	stored, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionInvalidated
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return ErrSessionInvalidated
	}
	return nil
}
