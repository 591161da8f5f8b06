package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/guard"
)

// CredentialService authenticates back-office admins against the
// admin_users table, with a lockout after repeated failures.
type CredentialService struct {
	pool   *pgxpool.Pool
	jwtMgr *JWTManager
	logger *slog.Logger
}

// NewCredentialService creates a CredentialService.
func NewCredentialService(pool *pgxpool.Pool, jwtMgr *JWTManager, logger *slog.Logger) *CredentialService {
	return &CredentialService{pool: pool, jwtMgr: jwtMgr, logger: logger}
}

// LoginInput holds admin login fields.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is a successful login.
type AuthResult struct {
	Token    string    `json:"token"`
	AdminID  uuid.UUID `json:"admin_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// Login authenticates an admin and issues an admin-realm token.
func (s *CredentialService) Login(ctx context.Context, input LoginInput, ip string) (*AuthResult, error) {
	if err := guard.CheckLocked(ctx, s.pool, input.Username); err != nil {
		return nil, err
	}

	var adminID uuid.UUID
	var passwordHash, role string
	err := s.pool.QueryRow(ctx,
		`SELECT id, password_hash, role FROM admin_users WHERE username = $1`,
		input.Username).Scan(&adminID, &passwordHash, &role)
	if err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(input.Password)); err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	guard.RecordAttempt(ctx, s.pool, input.Username, ip, true)

	token, err := s.jwtMgr.GenerateToken(RealmAdmin, adminID, input.Username, role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	s.logger.Info("admin logged in", "username", input.Username)
	return &AuthResult{Token: token, AdminID: adminID, Username: input.Username, Role: role}, nil
}
