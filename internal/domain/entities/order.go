package entities

import (
	"time"
)

// OrderStatus represents the status of a medicine order. Statuses advance
// monotonically forward along the delivery sequence; cancelled is
// reachable from pending and confirmed only.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// PaymentMethod for a medicine order
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentOnline         PaymentMethod = "online"
)

// MedicineOrder represents a medicine order placed by a patient at a
// pharmacy. Medicines is free text as entered by the patient.
type MedicineOrder struct {
	ID              string        `json:"id" db:"id"`
	PatientID       string        `json:"patient_id" db:"patient_id"`
	PharmacyID      string        `json:"pharmacy_id" db:"pharmacy_id"`
	Medicines       string        `json:"medicines" db:"medicines"`
	DeliveryAddress string        `json:"delivery_address" db:"delivery_address"`
	Phone           string        `json:"phone" db:"phone"`
	PaymentMethod   PaymentMethod `json:"payment_method" db:"payment_method"`
	IsUrgent        bool          `json:"is_urgent" db:"is_urgent"`
	Status          OrderStatus   `json:"status" db:"status"`
	Notes           string        `json:"notes" db:"notes"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// OrderView is an order with joined display fields attached by the
// reconciler; always present, sentinel on missing refs.
type OrderView struct {
	MedicineOrder
	PatientName   string `json:"patient_name,omitempty"`
	PharmacyName  string `json:"pharmacy_name,omitempty"`
	PharmacyPhone string `json:"pharmacy_phone,omitempty"`
}
