package domain

import (
	"fmt"
	"time"
)

type ConceptSource string

const (
	ConceptSourceCDM    ConceptSource = "cdm"
	ConceptSourceCohort ConceptSource = "cohort"
)

// Concept is a variable name. CDM concepts are global (CohortID nil);
// cohort concepts belong to exactly one cohort.
//
// Uniqueness of (variable, source_type, cohort_id) is enforced by two partial
// unique indexes created in db.EnsureIndexes, so that NULL cohort ids collide.
type Concept struct {
	ID         uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Variable   string        `gorm:"column:variable;not null;index" json:"variable"`
	SourceType ConceptSource `gorm:"column:source_type;type:varchar(16);not null;index" json:"sourceType"`
	CohortID   *uint         `gorm:"column:cohort_id;index" json:"cohortId,omitempty"`
	CreatedAt  time.Time     `gorm:"not null" json:"-"`

	MappingsAsSource []Mapping `gorm:"foreignKey:SourceID;constraint:OnDelete:CASCADE" json:"-"`
	MappingsAsTarget []Mapping `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Concept) TableName() string { return "concept" }

func (c *Concept) IsCDM() bool { return c != nil && c.SourceType == ConceptSourceCDM }

// Validate checks the ownership rule: cdm concepts are global, cohort concepts are owned.
func (c *Concept) Validate() error {
	if c == nil {
		return fmt.Errorf("nil concept")
	}
	if c.Variable == "" {
		return fmt.Errorf("concept variable is empty")
	}
	switch c.SourceType {
	case ConceptSourceCDM:
		if c.CohortID != nil {
			return fmt.Errorf("cdm concept %q must not belong to a cohort", c.Variable)
		}
	case ConceptSourceCohort:
		if c.CohortID == nil {
			return fmt.Errorf("cohort concept %q has no cohort", c.Variable)
		}
	default:
		return fmt.Errorf("concept %q has unknown source type %q", c.Variable, c.SourceType)
	}
	return nil
}
