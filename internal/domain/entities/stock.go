package entities

import (
	"math"
	"time"
)

// StockItem represents a batch of medicine held by a pharmacy.
// (PharmacyID, BatchNumber) is unique; duplicate inserts surface as a
// conflict error, not a generic failure.
type StockItem struct {
	ID                string    `json:"id" db:"id"`
	PharmacyID        string    `json:"pharmacy_id" db:"pharmacy_id"`
	MedicineName      string    `json:"medicine_name" db:"medicine_name"`
	GenericName       string    `json:"generic_name" db:"generic_name"`
	Manufacturer      string    `json:"manufacturer" db:"manufacturer"`
	BatchNumber       string    `json:"batch_number" db:"batch_number"`
	Quantity          int       `json:"quantity" db:"quantity"`
	Unit              string    `json:"unit" db:"unit"`
	PurchasePrice     float64   `json:"purchase_price" db:"purchase_price"`
	SellingPrice      float64   `json:"selling_price" db:"selling_price"`
	PurchaseDate      string    `json:"purchase_date" db:"purchase_date"`
	ExpiryDate        string    `json:"expiry_date" db:"expiry_date"`
	SupplierName      string    `json:"supplier_name" db:"supplier_name"`
	SupplierContact   string    `json:"supplier_contact" db:"supplier_contact"`
	StorageLocation   string    `json:"storage_location" db:"storage_location"`
	MinimumStockLevel int       `json:"minimum_stock_level" db:"minimum_stock_level"`
	Notes             string    `json:"notes" db:"notes"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// StockValue is the display value of the batch, recomputed from the
// stored quantity and selling price. Never persisted.
func (s *StockItem) StockValue() float64 {
	return math.Round(float64(s.Quantity)*s.SellingPrice*100) / 100
}

// LowStock reports whether quantity has fallen to the reorder threshold
func (s *StockItem) LowStock() bool {
	return s.Quantity <= s.MinimumStockLevel
}

// ExpiresWithin reports whether the batch expires within the given number
// of days. An unparseable or empty expiry date is treated as not expiring;
// an already-expired batch counts.
func (s *StockItem) ExpiresWithin(days int) bool {
	expiry, err := time.Parse("2006-01-02", s.ExpiryDate)
	if err != nil {
		return false
	}
	return !expiry.After(time.Now().AddDate(0, 0, days))
}
