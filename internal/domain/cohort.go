package domain

import "time"

// Cohort is one participating study. Name is the natural key used by every
// import file; it is stored trimmed.
type Cohort struct {
	ID                       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                     string    `gorm:"column:name;not null;uniqueIndex:uq_cohort_name" json:"name"`
	Participants             *int      `gorm:"column:participants" json:"participants"`
	ControlParticipants      *int      `gorm:"column:control_participants" json:"controlParticipants"`
	ProdromalParticipants    *int      `gorm:"column:prodromal_participants" json:"prodromalParticipants"`
	PDParticipants           *int      `gorm:"column:pd_participants" json:"pdParticipants"`
	LongitudinalParticipants *int      `gorm:"column:longitudinal_participants" json:"longitudinalParticipants"`
	FollowUpInterval         *string   `gorm:"column:follow_up_interval" json:"followUpInterval"`
	Location                 *string   `gorm:"column:location" json:"location"`
	DOI                      *string   `gorm:"column:doi;size:255" json:"doi"`
	Link                     *string   `gorm:"column:link;size:255" json:"link"`
	Color                    string    `gorm:"column:color;not null" json:"color"`
	CreatedAt                time.Time `gorm:"not null" json:"-"`

	Concepts                 []Concept                 `gorm:"foreignKey:CohortID;constraint:OnDelete:CASCADE" json:"-"`
	LongitudinalMeasurements []LongitudinalMeasurement `gorm:"foreignKey:CohortID;constraint:OnDelete:CASCADE" json:"-"`
	BiomarkerMeasurements    []BiomarkerMeasurement    `gorm:"foreignKey:CohortID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Cohort) TableName() string { return "cohort" }
