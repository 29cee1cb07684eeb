package domain

import (
	"fmt"
	"time"
)

// Mapping marks a cohort variable as equivalent to a CDM variable within one
// modality's mapping file. Rows written by the importer always point from the
// CDM concept (source) to the cohort concept (target); readers that need
// direction-free semantics look at both ends.
type Mapping struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceID  uint      `gorm:"column:source_id;not null;uniqueIndex:uq_mapping_source_target_modality,priority:1" json:"sourceId"`
	TargetID  uint      `gorm:"column:target_id;not null;index;uniqueIndex:uq_mapping_source_target_modality,priority:2" json:"targetId"`
	Modality  string    `gorm:"column:modality;not null;index;uniqueIndex:uq_mapping_source_target_modality,priority:3" json:"modality"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
}

func (Mapping) TableName() string { return "mapping" }

// ValidateEnds enforces the CDM -> cohort direction on write.
func (m *Mapping) ValidateEnds(source, target *Concept) error {
	if m == nil || source == nil || target == nil {
		return fmt.Errorf("mapping endpoints are required")
	}
	if m.Modality == "" {
		return fmt.Errorf("mapping %d->%d has no modality", source.ID, target.ID)
	}
	if source.SourceType != ConceptSourceCDM || target.SourceType != ConceptSourceCohort {
		return fmt.Errorf("mapping %q -> %q must go from a cdm concept to a cohort concept", source.Variable, target.Variable)
	}
	return nil
}
