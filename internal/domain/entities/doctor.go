package entities

import (
	"time"
)

// Specialty is a medical specialty referenced by doctors
type Specialty struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Doctor belongs to exactly one clinic and references at most one specialty
type Doctor struct {
	ID              string    `json:"id" db:"id"`
	ClinicID        string    `json:"clinic_id" db:"clinic_id"`
	Name            string    `json:"name" db:"name"`
	SpecialtyID     *string   `json:"specialty_id" db:"specialty_id"`
	Qualification   string    `json:"qualification" db:"qualification"`
	ExperienceYears int       `json:"experience_years" db:"experience_years"`
	Available       bool      `json:"available" db:"available"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DoctorView is a doctor with the specialty name attached
type DoctorView struct {
	Doctor
	SpecialtyName string `json:"specialty_name"`
}
