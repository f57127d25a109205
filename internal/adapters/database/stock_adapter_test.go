package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kllinic/marketplace/internal/adapters/database"
	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

func newStockAdapter(t *testing.T) (*postgres.Client, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	client := postgres.NewClientFromDB(db)
	return client, mock, func() { db.Close() }
}

func stockRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "pharmacy_id", "medicine_name", "generic_name", "manufacturer",
		"batch_number", "quantity", "unit", "purchase_price", "selling_price",
		"purchase_date", "expiry_date", "supplier_name", "supplier_contact",
		"storage_location", "minimum_stock_level", "notes",
		"created_at", "updated_at",
	})
}

func TestStockAdapter_Create(t *testing.T) {
	client, mock, closeFn := newStockAdapter(t)
	defer closeFn()
	adapter := database.NewStockAdapter(client)

	mock.ExpectExec(`INSERT INTO "pharmacy_stock"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), &entities.StockItem{
		ID:           "stk-1",
		PharmacyID:   "pha-1",
		MedicineName: "Paracetamol",
		BatchNumber:  "B-100",
		Quantity:     50,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockAdapter_Create_DuplicateBatchIsConflict(t *testing.T) {
	client, mock, closeFn := newStockAdapter(t)
	defer closeFn()
	adapter := database.NewStockAdapter(client)

	mock.ExpectExec(`INSERT INTO "pharmacy_stock"`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "pharmacy_stock_pharmacy_id_batch_number_key"})

	err := adapter.Create(context.Background(), &entities.StockItem{
		ID:           "stk-1",
		PharmacyID:   "pha-1",
		MedicineName: "Paracetamol",
		BatchNumber:  "B-100",
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestStockAdapter_GetByID_NotFound(t *testing.T) {
	client, mock, closeFn := newStockAdapter(t)
	defer closeFn()
	adapter := database.NewStockAdapter(client)

	mock.ExpectQuery(`SELECT .+ FROM "pharmacy_stock"`).
		WillReturnRows(stockRows())

	item, err := adapter.GetByID(context.Background(), "stk-gone")

	assert.Nil(t, item)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestStockAdapter_Update_DuplicateBatchIsConflict(t *testing.T) {
	client, mock, closeFn := newStockAdapter(t)
	defer closeFn()
	adapter := database.NewStockAdapter(client)

	mock.ExpectExec(`UPDATE "pharmacy_stock"`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := adapter.Update(context.Background(), &entities.StockItem{
		ID:           "stk-1",
		PharmacyID:   "pha-1",
		MedicineName: "Paracetamol",
		BatchNumber:  "B-100",
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestStockAdapter_Update_MissingRowIsNotFound(t *testing.T) {
	client, mock, closeFn := newStockAdapter(t)
	defer closeFn()
	adapter := database.NewStockAdapter(client)

	mock.ExpectExec(`UPDATE "pharmacy_stock"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Update(context.Background(), &entities.StockItem{
		ID:           "stk-gone",
		PharmacyID:   "pha-1",
		MedicineName: "Paracetamol",
		BatchNumber:  "B-100",
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestStockAdapter_ListByPharmacy(t *testing.T) {
	client, mock, closeFn := newStockAdapter(t)
	defer closeFn()
	adapter := database.NewStockAdapter(client)

	now := time.Now()
	rows := stockRows().
		AddRow("stk-1", "pha-1", "Amoxicillin", "amoxicillin", "Acme Pharma",
			"B-100", 30, "capsule", 1.2, 2.0,
			"2026-01-01", "2027-01-01", "MedSupply", "0800-111",
			"Shelf A", 10, "", now, now).
		AddRow("stk-2", "pha-1", "Paracetamol", nil, nil,
			"B-200", 200, "tablet", 0.4, 0.9,
			nil, nil, nil, nil,
			nil, 20, nil, now, now)

	mock.ExpectQuery(`SELECT .+ FROM "pharmacy_stock"`).
		WillReturnRows(rows)

	items, err := adapter.ListByPharmacy(context.Background(), "pha-1")

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Amoxicillin", items[0].MedicineName)
	assert.Empty(t, items[1].GenericName, "NULL text columns scan to empty strings")
	assert.Equal(t, 200, items[1].Quantity)
}

func TestStockAdapter_ListByPharmacy_RowIterationFailure(t *testing.T) {
	client, mock, closeFn := newStockAdapter(t)
	defer closeFn()
	adapter := database.NewStockAdapter(client)

	now := time.Now()
	rows := stockRows().
		AddRow("stk-1", "pha-1", "Amoxicillin", "amoxicillin", "Acme Pharma",
			"B-100", 30, "capsule", 1.2, 2.0,
			"2026-01-01", "2027-01-01", "MedSupply", "0800-111",
			"Shelf A", 10, "", now, now).
		AddRow("stk-2", "pha-1", "Paracetamol", "paracetamol", "Acme Pharma",
			"B-200", 200, "tablet", 0.4, 0.9,
			"2026-01-01", "2027-01-01", "MedSupply", "0800-111",
			"Shelf B", 20, "", now, now).
		RowError(1, errors.New("connection reset mid-stream"))

	mock.ExpectQuery(`SELECT .+ FROM "pharmacy_stock"`).
		WillReturnRows(rows)

	items, err := adapter.ListByPharmacy(context.Background(), "pha-1")

	// A mid-iteration failure must surface, never a truncated row set
	require.Error(t, err)
	assert.Nil(t, items)
}
