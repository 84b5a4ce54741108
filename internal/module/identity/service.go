package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/glowingstore/internal/auth"
	"github.com/simp-lee/glowingstore/internal/datastore"
	"github.com/simp-lee/glowingstore/internal/domain"
)

const (
	maxFailedAccessAttempts = 3
	lockoutDuration         = 10 * time.Minute
	resetTokenLifetime      = 24 * time.Hour
)

// Service exposes account operations to the HTTP layer. It also implements
// middleware.AccountVerifier, so one instance serves both the auth endpoints
// and the authentication middleware.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResetPasswordResponse, error)
	UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error
	Me(ctx context.Context, userName string) (*User, error)
	VerifyActive(ctx context.Context, userName, securityStamp string) error
	SeedRoles(ctx context.Context) error
}

type identityService struct {
	store  *datastore.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewService creates an identity Service over the given store and token
// service.
func NewService(store *datastore.Store, tokens *auth.TokenService, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &identityService{store: store, tokens: tokens, logger: logger}
}

// Login verifies credentials, rotates the security stamp, and mints a bearer
// token carrying the user's identity and roles. Three consecutive failures
// lock the account for ten minutes. An unknown username and a wrong password
// yield the same client error.
func (s *identityService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.findByUserName(ctx, req.UserName)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeClientError, "invalid username or password", nil)
		}
		return nil, err
	}

	now := time.Now().UTC()
	if user.IsLockedOut(now) {
		return nil, domain.NewAppError(domain.CodeClientError, "you're locked out until "+user.LockoutEnd.Format(time.RFC3339), nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if err := s.recordFailedAccess(ctx, user, now); err != nil {
			return nil, err
		}
		return nil, domain.NewAppError(domain.CodeClientError, "invalid username or password", nil)
	}

	user.AccessFailedCount = 0
	user.LockoutEnd = nil
	user.SecurityStamp = uuid.NewString()

	session := s.store.Session()
	if err := session.Update(user); err != nil {
		return nil, err
	}
	if _, err := session.Save(ctx); err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, role.Name)
	}

	token, expiresAt, err := s.tokens.Generate(user, roles)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_name", user.UserName))
	return &AuthResponse{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Register creates an account with the User role. The email doubles as the
// username and must be unique.
func (s *identityService) Register(ctx context.Context, req RegisterRequest) error {
	if err := validatePassword(req.Password); err != nil {
		return err
	}

	var count int64
	err := datastore.Query[domain.User](s.store).WithContext(ctx).
		Where("email = ?", req.Email).
		Count(&count).Error
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to check for existing account", err)
	}
	if count > 0 {
		return domain.NewAppError(domain.CodeClientError, "an account with this email already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	user := &domain.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		UserName:      req.Email,
		Email:         req.Email,
		PasswordHash:  string(hash),
		SecurityStamp: uuid.NewString(),
	}

	session := s.store.Session()
	if err := session.Insert(user); err != nil {
		return err
	}
	if _, err := session.Save(ctx); err != nil {
		return err
	}

	return s.addToRole(ctx, user, domain.RoleUser)
}

// ResetPassword issues a single-use reset token for the account with the
// given email. Only a SHA-256 hash of the token is stored.
func (s *identityService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResetPasswordResponse, error) {
	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate reset token", err)
	}
	token := hex.EncodeToString(buf)

	expiry := time.Now().UTC().Add(resetTokenLifetime)
	user.ResetTokenHash = hashToken(token)
	user.ResetTokenExpiry = &expiry

	session := s.store.Session()
	if err := session.Update(user); err != nil {
		return nil, err
	}
	if _, err := session.Save(ctx); err != nil {
		return nil, err
	}

	return &ResetPasswordResponse{Token: token}, nil
}

// UpdatePassword consumes a reset token and replaces the password, rotating
// the security stamp so every outstanding bearer token dies with the old
// credentials.
func (s *identityService) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error {
	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if user.ResetTokenHash == "" || user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(now) ||
		subtle.ConstantTimeCompare([]byte(user.ResetTokenHash), []byte(hashToken(req.Token))) != 1 {
		return domain.NewAppError(domain.CodeClientError, "couldn't update password", nil)
	}

	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	user.PasswordHash = string(hash)
	user.SecurityStamp = uuid.NewString()
	user.ResetTokenHash = ""
	user.ResetTokenExpiry = nil
	user.AccessFailedCount = 0
	user.LockoutEnd = nil

	session := s.store.Session()
	if err := session.Update(user); err != nil {
		return err
	}
	_, err = session.Save(ctx)
	return err
}

// Me returns the profile of the authenticated user.
func (s *identityService) Me(ctx context.Context, userName string) (*User, error) {
	user, err := s.findByUserName(ctx, userName)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeNotFound, "no account found", err)
		}
		return nil, err
	}
	return &User{FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}, nil
}

// VerifyActive implements the active-account check behind every authorization
// policy: the account exists, is not locked out, and the presented security
// stamp is current.
func (s *identityService) VerifyActive(ctx context.Context, userName, securityStamp string) error {
	user, err := s.findByUserName(ctx, userName)
	if err != nil {
		return err
	}

	if user.IsLockedOut(time.Now().UTC()) {
		return domain.NewAppError(domain.CodeForbidden, "account is locked out", nil)
	}
	if user.SecurityStamp != securityStamp {
		return domain.NewAppError(domain.CodeForbidden, "token has been invalidated", nil)
	}
	return nil
}

// SeedRoles creates the well-known roles that are missing. Runs once at
// startup.
func (s *identityService) SeedRoles(ctx context.Context) error {
	for _, name := range []string{domain.RoleAdministrator, domain.RolePowerUser, domain.RoleUser} {
		var count int64
		err := datastore.Query[domain.Role](s.store).WithContext(ctx).
			Where("name = ?", name).
			Count(&count).Error
		if err != nil {
			return domain.NewAppError(domain.CodeInternal, "failed to check role", err)
		}
		if count > 0 {
			continue
		}

		session := s.store.Session()
		if err := session.Insert(&domain.Role{Name: name}); err != nil {
			return err
		}
		if _, err := session.Save(ctx); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "role created", slog.String("role", name))
	}
	return nil
}

// recordFailedAccess increments the failure counter and applies the lockout
// window once the threshold is reached.
func (s *identityService) recordFailedAccess(ctx context.Context, user *domain.User, now time.Time) error {
	user.AccessFailedCount++
	if user.AccessFailedCount >= maxFailedAccessAttempts {
		lockoutEnd := now.Add(lockoutDuration)
		user.LockoutEnd = &lockoutEnd
		user.AccessFailedCount = 0
		s.logger.WarnContext(ctx, "account locked out",
			slog.String("user_name", user.UserName),
			slog.Time("lockout_end", lockoutEnd))
	}

	session := s.store.Session()
	if err := session.Update(user); err != nil {
		return err
	}
	_, err := session.Save(ctx)
	return err
}

// addToRole links the user to the named role through the join table. The
// gateway never cascades association writes, so the link is explicit.
func (s *identityService) addToRole(ctx context.Context, user *domain.User, roleName string) error {
	var role domain.Role
	err := datastore.Query[domain.Role](s.store).WithContext(ctx).
		First(&role, "name = ?", roleName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewAppError(domain.CodeInternal, "role "+roleName+" is not seeded", err)
		}
		return domain.NewAppError(domain.CodeInternal, "failed to load role", err)
	}

	err = s.store.DB().WithContext(ctx).Model(user).Association("Roles").Append(&role)
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to assign role", err)
	}
	return nil
}

func (s *identityService) findByUserName(ctx context.Context, userName string) (*domain.User, error) {
	var user domain.User
	err := datastore.Query[domain.User](s.store).WithContext(ctx).
		Preload("Roles").
		First(&user, "user_name = ?", userName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewAppError(domain.CodeInternal, "failed to load account", err)
	}
	return &user, nil
}

func (s *identityService) findByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := datastore.Query[domain.User](s.store).WithContext(ctx).
		First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewAppError(domain.CodeNotFound, "this account doesn't exist", err)
		}
		return nil, domain.NewAppError(domain.CodeInternal, "failed to load account", err)
	}
	return &user, nil
}

// validatePassword enforces the account password policy: at least eight
// characters with lowercase, uppercase, digit, and symbol all present.
func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.NewAppError(domain.CodeValidation, "the password must be at least 8 characters", nil)
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return domain.NewAppError(domain.CodeValidation, "the password must contain lowercase, uppercase, digit and symbol characters", nil)
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
