package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type AuthService interface {
	// EnsureUser creates the user when the name is free. An existing user keeps
	// its password.
	EnsureUser(ctx context.Context, name, password string) (bool, error)
	Authenticate(ctx context.Context, name, password string) (*types.User, error)
}

type authService struct {
	log     *logger.Logger
	users   repos.UserRepo
	compare func(hash, password []byte) error
}

func NewAuthService(log *logger.Logger, users repos.UserRepo) AuthService {
	return &authService{
		log:     log.With("service", "AuthService"),
		users:   users,
		compare: bcrypt.CompareHashAndPassword,
	}
}

// Unknown names are checked against this hash so they cost as much as a
// wrong password.
var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

func unknownUserHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pdataviewer-unknown-user"), bcrypt.DefaultCost)
	})
	return dummyHash
}

func (s *authService) EnsureUser(ctx context.Context, name, password string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return false, fmt.Errorf("user name and password are required: %w", apperr.ErrInvalidArgument)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.users.CreateIgnoreConflicts(dbctx.Context{Ctx: ctx}, &types.User{
		Name:           name,
		HashedPassword: string(hashed),
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info("Created user", "name", name)
	}
	return created, nil
}

func (s *authService) Authenticate(ctx context.Context, name, password string) (*types.User, error) {
	u, err := s.users.GetByName(dbctx.Context{Ctx: ctx}, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = s.compare(unknownUserHash(), []byte(password))
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	if err := s.compare([]byte(u.HashedPassword), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthorized
	}
	return u, nil
}
