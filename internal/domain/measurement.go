package domain

import "time"

// LongitudinalMeasurement counts patients with data for a variable at a visit offset.
type LongitudinalMeasurement struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Variable          string    `gorm:"column:variable;not null;uniqueIndex:uq_variable_months_cohort,priority:1" json:"variable"`
	Months            int       `gorm:"column:months;not null;uniqueIndex:uq_variable_months_cohort,priority:2" json:"months"`
	CohortID          uint      `gorm:"column:cohort_id;not null;index;uniqueIndex:uq_variable_months_cohort,priority:3" json:"cohortId"`
	PatientCount      int       `gorm:"column:patient_count;not null" json:"patientCount"`
	TotalPatientCount int       `gorm:"column:total_patient_count;not null" json:"totalPatientCount"`
	CreatedAt         time.Time `gorm:"not null" json:"-"`
}

func (LongitudinalMeasurement) TableName() string { return "longitudinal_measurement" }

// BiomarkerMeasurement is one participant's value for one biomarker.
type BiomarkerMeasurement struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Variable      string    `gorm:"column:variable;not null;index;uniqueIndex:uq_participant_cohort_variable,priority:3" json:"variable"`
	ParticipantID int64     `gorm:"column:participant_id;not null;uniqueIndex:uq_participant_cohort_variable,priority:1" json:"participantId"`
	CohortID      uint      `gorm:"column:cohort_id;not null;index;uniqueIndex:uq_participant_cohort_variable,priority:2" json:"cohortId"`
	Measurement   float64   `gorm:"column:measurement;not null" json:"measurement"`
	Diagnosis     string    `gorm:"column:diagnosis;not null;index" json:"diagnosis"`
	CreatedAt     time.Time `gorm:"not null" json:"-"`
}

func (BiomarkerMeasurement) TableName() string { return "biomarker_measurement" }
