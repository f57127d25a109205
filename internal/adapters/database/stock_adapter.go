package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

var stockColumns = []interface{}{
	"id", "pharmacy_id", "medicine_name", "generic_name", "manufacturer",
	"batch_number", "quantity", "unit", "purchase_price", "selling_price",
	"purchase_date", "expiry_date", "supplier_name", "supplier_contact",
	"storage_location", "minimum_stock_level", "notes",
	"created_at", "updated_at",
}

// StockAdapter implements the StockRepository interface
type StockAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewStockAdapter creates a new stock adapter
func NewStockAdapter(client *postgres.Client) repositories.StockRepository {
	return &StockAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new stock item. A duplicate (pharmacy_id,
// batch_number) pair surfaces as a conflict, not a generic failure.
func (a *StockAdapter) Create(ctx context.Context, item *entities.StockItem) error {
	record := goqu.Record{
		"id":                  item.ID,
		"pharmacy_id":         item.PharmacyID,
		"medicine_name":       item.MedicineName,
		"generic_name":        item.GenericName,
		"manufacturer":        item.Manufacturer,
		"batch_number":        item.BatchNumber,
		"quantity":            item.Quantity,
		"unit":                item.Unit,
		"purchase_price":      item.PurchasePrice,
		"selling_price":       item.SellingPrice,
		"purchase_date":       item.PurchaseDate,
		"expiry_date":         item.ExpiryDate,
		"supplier_name":       item.SupplierName,
		"supplier_contact":    item.SupplierContact,
		"storage_location":    item.StorageLocation,
		"minimum_stock_level": item.MinimumStockLevel,
		"notes":               item.Notes,
		"created_at":          item.CreatedAt,
		"updated_at":          item.UpdatedAt,
	}

	query, args, err := a.db.Insert("pharmacy_stock").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("batch number already exists for this pharmacy")
		}
		return apperrors.NewInternalError("failed to create stock item", err)
	}

	return nil
}

// GetByID retrieves a stock item by ID
func (a *StockAdapter) GetByID(ctx context.Context, id string) (*entities.StockItem, error) {
	query, args, err := a.db.Select(stockColumns...).
		From("pharmacy_stock").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	item, err := a.scanStockRow(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("stock item with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get stock item", err)
	}

	return item, nil
}

// Update updates a stock item. Changing the batch number to one already
// held by the pharmacy is a conflict.
func (a *StockAdapter) Update(ctx context.Context, item *entities.StockItem) error {
	item.UpdatedAt = time.Now()

	record := goqu.Record{
		"medicine_name":       item.MedicineName,
		"generic_name":        item.GenericName,
		"manufacturer":        item.Manufacturer,
		"batch_number":        item.BatchNumber,
		"quantity":            item.Quantity,
		"unit":                item.Unit,
		"purchase_price":      item.PurchasePrice,
		"selling_price":       item.SellingPrice,
		"purchase_date":       item.PurchaseDate,
		"expiry_date":         item.ExpiryDate,
		"supplier_name":       item.SupplierName,
		"supplier_contact":    item.SupplierContact,
		"storage_location":    item.StorageLocation,
		"minimum_stock_level": item.MinimumStockLevel,
		"notes":               item.Notes,
		"updated_at":          item.UpdatedAt,
	}

	query, args, err := a.db.Update("pharmacy_stock").
		Set(record).
		Where(goqu.Ex{"id": item.ID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("batch number already exists for this pharmacy")
		}
		return apperrors.NewInternalError("failed to update stock item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("stock item with id %s not found", item.ID))
	}

	return nil
}

// Delete removes a stock item
func (a *StockAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("pharmacy_stock").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete stock item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("stock item with id %s not found", id))
	}

	return nil
}

// ListByPharmacy retrieves a pharmacy's stock ordered by medicine name
func (a *StockAdapter) ListByPharmacy(ctx context.Context, pharmacyID string) ([]*entities.StockItem, error) {
	query, args, err := a.db.Select(stockColumns...).
		From("pharmacy_stock").
		Where(goqu.Ex{"pharmacy_id": pharmacyID}).
		Order(goqu.I("medicine_name").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list stock", err)
	}
	defer rows.Close()

	var items []*entities.StockItem
	for rows.Next() {
		item, err := a.scanStockRow(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan stock item", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating stock items", err)
	}

	return items, nil
}

func (a *StockAdapter) scanStockRow(row rowScanner) (*entities.StockItem, error) {
	item := &entities.StockItem{}
	var genericName, manufacturer, unit, purchaseDate, expiryDate sql.NullString
	var supplierName, supplierContact, storageLocation, notes sql.NullString

	err := row.Scan(
		&item.ID,
		&item.PharmacyID,
		&item.MedicineName,
		&genericName,
		&manufacturer,
		&item.BatchNumber,
		&item.Quantity,
		&unit,
		&item.PurchasePrice,
		&item.SellingPrice,
		&purchaseDate,
		&expiryDate,
		&supplierName,
		&supplierContact,
		&storageLocation,
		&item.MinimumStockLevel,
		&notes,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.GenericName = genericName.String
	item.Manufacturer = manufacturer.String
	item.Unit = unit.String
	item.PurchaseDate = purchaseDate.String
	item.ExpiryDate = expiryDate.String
	item.SupplierName = supplierName.String
	item.SupplierContact = supplierContact.String
	item.StorageLocation = storageLocation.String
	item.Notes = notes.String

	return item, nil
}
