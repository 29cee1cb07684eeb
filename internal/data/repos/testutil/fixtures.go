package testutil

import (
	"context"
	"testing"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedCohort(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Cohort {
	tb.Helper()
	c := &types.Cohort{Name: name, Color: "#336699"}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cohort: %v", err)
	}
	return c
}

func SeedCDMConcept(tb testing.TB, ctx context.Context, tx *gorm.DB, variable string) *types.Concept {
	tb.Helper()
	c := &types.Concept{Variable: variable, SourceType: types.ConceptSourceCDM}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cdm concept: %v", err)
	}
	return c
}

func SeedCohortConcept(tb testing.TB, ctx context.Context, tx *gorm.DB, cohortID uint, variable string) *types.Concept {
	tb.Helper()
	id := cohortID
	c := &types.Concept{Variable: variable, SourceType: types.ConceptSourceCohort, CohortID: &id}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cohort concept: %v", err)
	}
	return c
}

func SeedMapping(tb testing.TB, ctx context.Context, tx *gorm.DB, sourceID, targetID uint, modality string) *types.Mapping {
	tb.Helper()
	m := &types.Mapping{SourceID: sourceID, TargetID: targetID, Modality: modality}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed mapping: %v", err)
	}
	return m
}
