package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/pdataviewer-backend/internal/cache"
	"github.com/yungbote/pdataviewer-backend/internal/data/db"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type DatabaseService interface {
	// Wipe drops and recreates every data table. Users and the import job
	// history survive.
	Wipe(ctx context.Context) error
}

type databaseService struct {
	db    *gorm.DB
	log   *logger.Logger
	cache *cache.ViewCache
}

func NewDatabaseService(gdb *gorm.DB, log *logger.Logger, viewCache *cache.ViewCache) DatabaseService {
	return &databaseService{
		db:    gdb,
		log:   log.With("service", "DatabaseService"),
		cache: viewCache,
	}
}

func (s *databaseService) Wipe(ctx context.Context) error {
	if err := db.ClearAll(s.db.WithContext(ctx)); err != nil {
		s.log.Error("Database wipe failed", "error", err)
		return err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("View cache invalidation failed", "error", err)
	}
	s.log.Info("Database wiped")
	return nil
}
