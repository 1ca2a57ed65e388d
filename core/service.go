package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const defaultStoreTimeout = 3 * time.Second

// RepositoryAuthService implements AuthService on top of a UserRepository.
type RepositoryAuthService struct {
	users    UserRepository
	tokens   *TokenIssuer
	timeout  time.Duration
	hashCost int
}

// AuthOption customizes a RepositoryAuthService.
type AuthOption func(*RepositoryAuthService)

// WithStoreTimeout bounds every store call made by the service.
func WithStoreTimeout(d time.Duration) AuthOption {
	return func(s *RepositoryAuthService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHashCost overrides the bcrypt cost used for new passwords.
func WithHashCost(cost int) AuthOption {
	return func(s *RepositoryAuthService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

func NewRepositoryAuthService(users UserRepository, tokens *TokenIssuer, opts ...AuthOption) *RepositoryAuthService {
	s := &RepositoryAuthService{
		users:    users,
		tokens:   tokens,
		timeout:  defaultStoreTimeout,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// burnCompare spends a bcrypt comparison so unknown emails cost as much as wrong passwords.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("desa-api-placeholder"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login checks credentials and issues a new access credential.
func (s *RepositoryAuthService) Login(ctx context.Context, email, password string) (AccessCredential, User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AccessCredential{}, User{}, ErrInvalidCredentials
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.users.FindByEmail(storeCtx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			burnCompare(password)
			return AccessCredential{}, User{}, ErrInvalidCredentials
		}
		return AccessCredential{}, User{}, infrastructureError("find user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return AccessCredential{}, User{}, ErrInvalidCredentials
	}

	cred, err := s.tokens.Issue(rec.ID, rec.Role)
	if err != nil {
		return AccessCredential{}, User{}, infrastructureError("issue credential", err)
	}
	return cred, rec.Public(), nil
}

// Register creates a resident account with role user.
func (s *RepositoryAuthService) Register(ctx context.Context, in RegisterInput) (User, error) {
	return s.create(ctx, in, RoleUser)
}

// RegisterAdmin creates an administrator account.
func (s *RepositoryAuthService) RegisterAdmin(ctx context.Context, in RegisterInput) (User, error) {
	return s.create(ctx, in, RoleAdmin)
}

// bcrypt reads at most 72 bytes of a password.
const maxPasswordBytes = 72

func (s *RepositoryAuthService) create(ctx context.Context, in RegisterInput, role Role) (User, error) {
	if len(in.Password) > maxPasswordBytes {
		return User{}, newValidationError([]FieldError{{
			Field:   "password",
			Rule:    "max",
			Message: "password must be at most 72 bytes",
		}})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return User{}, infrastructureError("hash password", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.users.Create(storeCtx, UserRecord{
		NamaDepan:    strings.TrimSpace(in.NamaDepan),
		NamaBelakang: strings.TrimSpace(in.NamaBelakang),
		NomorHp:      strings.TrimSpace(in.NomorHp),
		Email:        normalizeEmail(in.Email),
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return User{}, ErrEmailInUse
		}
		return User{}, infrastructureError("create user", err)
	}
	return rec.Public(), nil
}

// Logout has nothing to revoke server-side: credentials are stateless.
func (s *RepositoryAuthService) Logout(ctx context.Context) error {
	return nil
}

// CurrentUser resolves a credential subject to its profile.
func (s *RepositoryAuthService) CurrentUser(ctx context.Context, subjectID int64) (*User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.users.FindByID(storeCtx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, infrastructureError("find user", err)
	}
	u := rec.Public()
	return &u, nil
}
