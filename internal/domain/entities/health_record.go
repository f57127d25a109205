package entities

import (
	"time"
)

// HealthRecord is one entry in a patient's health timeline
type HealthRecord struct {
	ID          string    `json:"id" db:"id"`
	PatientID   string    `json:"patient_id" db:"patient_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	RecordDate  string    `json:"record_date" db:"record_date"`
	DoctorName  string    `json:"doctor_name" db:"doctor_name"`
	ClinicName  string    `json:"clinic_name" db:"clinic_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Populated alongside the record, not stored on it
	Symptoms  []HealthSymptom  `json:"symptoms" db:"-"`
	Medicines []HealthMedicine `json:"medicines" db:"-"`
}

// HealthSymptom is a symptom noted on a health record
type HealthSymptom struct {
	ID       string `json:"id" db:"id"`
	RecordID string `json:"record_id" db:"record_id"`
	Name     string `json:"name" db:"name"`
	Severity string `json:"severity" db:"severity"`
}

// HealthMedicine is a medicine prescribed on a health record
type HealthMedicine struct {
	ID       string `json:"id" db:"id"`
	RecordID string `json:"record_id" db:"record_id"`
	Name     string `json:"name" db:"name"`
	Dosage   string `json:"dosage" db:"dosage"`
	Duration string `json:"duration" db:"duration"`
}
