package entities

import (
	"time"
)

// Profile is a patient-facing account profile. Its ID equals the owning
// user id, so appointments and orders reference it directly.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Clinic is a clinic tenant profile. UserID is nil for seed rows, which
// are listed in directories but never resolve to an acting tenant.
type Clinic struct {
	ID         string    `json:"id" db:"id"`
	UserID     *string   `json:"user_id" db:"user_id"`
	ClinicName string    `json:"clinic_name" db:"clinic_name"`
	Address    string    `json:"address" db:"address"`
	Phone      string    `json:"phone" db:"phone"`
	Email      string    `json:"email" db:"email"`
	Verified   bool      `json:"verified" db:"verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Pharmacy is a pharmacy tenant profile. UserID is nil for seed rows.
type Pharmacy struct {
	ID           string    `json:"id" db:"id"`
	UserID       *string   `json:"user_id" db:"user_id"`
	PharmacyName string    `json:"pharmacy_name" db:"pharmacy_name"`
	Address      string    `json:"address" db:"address"`
	Phone        string    `json:"phone" db:"phone"`
	Email        string    `json:"email" db:"email"`
	Verified     bool      `json:"verified" db:"verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Sentinel display values substituted when a cross-table reference is
// missing, so joined fields are always present.
const (
	UnknownPatientName  = "Unknown Patient"
	UnknownPharmacyName = "Unknown Pharmacy"
	UnknownClinicName   = "Unknown Clinic"
	UnknownDoctorName   = "Unknown Doctor"
)
