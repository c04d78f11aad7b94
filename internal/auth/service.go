package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/internal/users"
	pkgAuth "github.com/storefrontlabs/storefront-backend/pkg/auth"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/ids"
	"github.com/storefrontlabs/storefront-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid email/username or password"

// Service defines the behavior needed by the users controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID string, role enums.Role) (*MeResponse, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ResolveRole(ctx context.Context, userID string) (enums.Role, error)
	PhoneNumbers(ctx context.Context, userID string) ([]string, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

type sessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	DB             txRunner
	Users          userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	IDs            ids.Generator
	Now            func() time.Time
}

type service struct {
	db          txRunner
	users       userRepository
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	ids         ids.Generator
	now         func() time.Time
}

// NewService constructs the account service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "database client is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repository is required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	gen := params.IDs
	if gen == nil {
		gen = ids.UUID{}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:          params.DB,
		users:       params.Users,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		ids:         gen,
		now:         now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email, username and password are required")
	}

	role := enums.RoleBuyer
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := enums.ParseRole(req.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		role = parsed
	}
	if !role.CanSelfRegister() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role cannot be self-registered")
	}

	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = username
	}
	user := &models.User{
		ID:           s.ids.NewID(),
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: hash,
		Rank:         "Bronze",
		CreatedAt:    s.now().UTC(),
	}
	ext := users.Extension{
		Role:         role,
		PhoneNumber:  req.PhoneNumber,
		LicensePlate: req.licensePlate(),
		Company:      req.Company,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return users.NewRepository(tx).Create(ctx, s.ids, user, ext)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "user already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issue(ctx, user, role)
}

func (s *service) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup username")
	}
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	identifier := req.identifier()
	if identifier == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please provide email/username and password")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, identifier)
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if user.IsBanned {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account has been banned")
	}

	role, err := s.users.ResolveRole(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve role")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account has no role")
	}

	if security.NeedsRehash(user.PasswordHash) {
		if upgraded, hashErr := security.HashPassword(req.Password, s.passwordCfg); hashErr == nil {
			// Best effort: a failed upgrade leaves the legacy hash usable.
			_ = s.users.UpdatePasswordHash(ctx, user.ID, upgraded)
		}
	}

	return s.issue(ctx, user, role)
}

func (s *service) issue(ctx context.Context, user *models.User, role enums.Role) (*Session, error) {
	accessID, err := s.session.Create(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}
	now := s.now()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		_ = s.session.Revoke(ctx, accessID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &Session{
		Token:     token,
		AccessID:  accessID,
		ExpiresAt: now.Add(s.jwtCfg.TTL()),
		User:      users.FromModel(user),
		Role:      role,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID string, role enums.Role) (*MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	phones, err := s.users.PhoneNumbers(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load phone numbers")
	}
	if phones == nil {
		phones = []string{}
	}
	return &MeResponse{User: users.FromModel(user), PhoneNumbers: phones, Role: role}, nil
}
