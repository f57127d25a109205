package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a booking created by a patient at a clinic.
// Rows are never deleted, only status-transitioned.
type Appointment struct {
	ID              string            `json:"id" db:"id"`
	PatientID       string            `json:"patient_id" db:"patient_id"`
	ClinicID        string            `json:"clinic_id" db:"clinic_id"`
	DoctorID        *string           `json:"doctor_id" db:"doctor_id"`
	AppointmentDate string            `json:"appointment_date" db:"appointment_date"`
	AppointmentTime string            `json:"appointment_time" db:"appointment_time"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Notes           string            `json:"notes" db:"notes"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// AppointmentView is an appointment with its cross-table display fields
// attached by the join reconciler. PatientName, and DoctorName/Specialty
// when DoctorID is set, are always present (sentinel on missing refs).
type AppointmentView struct {
	Appointment
	PatientName string `json:"patient_name"`
	ClinicName  string `json:"clinic_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
}
