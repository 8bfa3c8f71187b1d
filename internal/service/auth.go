// Package service provides the authentication and banking business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avoronov/bankadmin/internal/models"
)

// Credentials of the administrator seeded on first startup. The password is
// a known placeholder and must be changed after the first login.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@banking.com"
	DefaultAdminPassword = "admin123"
)

var (
	// ErrInvalidCredentials is returned when a login attempt fails.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserExists is returned when a registration collides with an
	// existing username or email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserInactive is returned when a deactivated user tries to log in.
	ErrUserInactive = errors.New("user account is deactivated")
)

// UserRepository defines the user persistence operations required by the
// authentication service.
type UserRepository interface {
	Create(ctx context.Context, username, email string, passwordHash []byte) (*models.User, error)
	ByID(ctx context.Context, id int64) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
}

// AdminRepository defines the administrator persistence operations required
// by the authentication service.
type AdminRepository interface {
	Create(ctx context.Context, username, email string, passwordHash []byte) (*models.Admin, error)
	ByID(ctx context.Context, id int64) (*models.Admin, error)
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// AccountOpener opens the initial account for a freshly registered user.
type AccountOpener interface {
	Create(ctx context.Context, userID int64, number string) (*models.Account, error)
}

// AuthService implements registration, login verification, principal
// loading and the default-admin seed.
type AuthService struct {
	users    UserRepository
	admins   AdminRepository
	accounts AccountOpener
}

// NewAuthService constructs a new AuthService using the provided repositories.
func NewAuthService(users UserRepository, admins AdminRepository, accounts AccountOpener) *AuthService {
	return &AuthService{users: users, admins: admins, accounts: accounts}
}

// RegisterUser validates the input, hashes the password and creates the
// user together with an opening account.
func (s *AuthService) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	exists, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		return nil, err
	}
	if _, err := s.accounts.Create(ctx, user.ID, NewAccountNumber()); err != nil {
		return nil, fmt.Errorf("open account: %w", err)
	}
	return user, nil
}

// AuthenticateUser verifies a user login. Unknown usernames and wrong
// passwords both map to ErrInvalidCredentials; deactivated users are
// rejected with ErrUserInactive.
func (s *AuthService) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.ByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

// AuthenticateAdmin verifies an administrator login.
func (s *AuthService) AuthenticateAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	admin, err := s.admins.ByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// SeedDefaultAdmin guarantees an administrator named "admin" exists.
// The insert only happens when no such row is present, so invoking the
// bootstrap any number of times leaves exactly one default admin. A banner
// goes to stdout when the account is created.
func (s *AuthService) SeedDefaultAdmin(ctx context.Context) error {
	_, err := s.admins.ByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("look up default admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	if _, err := s.admins.Create(ctx, DefaultAdminUsername, DefaultAdminEmail, hash); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Println("Default admin account created")
	fmt.Printf("  Username: %s\n", DefaultAdminUsername)
	fmt.Printf("  Password: %s\n", DefaultAdminPassword)
	fmt.Println("  Change this password after first login!")
	fmt.Println(line)
	return nil
}

// LoadPrincipal resolves a stored session identifier to a principal.
// Identifiers prefixed "admin_" are looked up in the admins table, bare
// decimal identifiers in the users table. A malformed numeric part returns
// the strconv error unchanged.
func (s *AuthService) LoadPrincipal(ctx context.Context, sessionID string) (models.Principal, error) {
	if strings.HasPrefix(sessionID, models.AdminSessionPrefix) {
		id, err := strconv.ParseInt(strings.TrimPrefix(sessionID, models.AdminSessionPrefix), 10, 64)
		if err != nil {
			return nil, err
		}
		return s.admins.ByID(ctx, id)
	}

	id, err := strconv.ParseInt(sessionID, 10, 64)
	if err != nil {
		return nil, err
	}
	return s.users.ByID(ctx, id)
}

// NewAccountNumber produces an externally visible account number derived
// from a random UUID.
func NewAccountNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ACC-" + raw[:12]
}
