package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type UserRepo interface {
	// CreateIgnoreConflicts inserts the user unless the name is taken and
	// reports whether a row was written.
	CreateIgnoreConflicts(dbc dbctx.Context, user *types.User) (bool, error)
	GetByName(dbc dbctx.Context, name string) (*types.User, error)
	NameExists(dbc dbctx.Context, name string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) CreateIgnoreConflicts(dbc dbctx.Context, user *types.User) (bool, error) {
	if user == nil {
		return false, fmt.Errorf("nil user")
	}
	res := dbc.DB(ur.db).Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (ur *userRepo) GetByName(dbc dbctx.Context, name string) (*types.User, error) {
	var u types.User
	err := dbc.DB(ur.db).Where("name = ?", name).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) NameExists(dbc dbctx.Context, name string) (bool, error) {
	var count int64
	if err := dbc.DB(ur.db).Model(&types.User{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
