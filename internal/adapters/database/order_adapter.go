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

var orderColumns = []interface{}{
	"id", "patient_id", "pharmacy_id", "medicines", "delivery_address",
	"phone", "payment_method", "is_urgent", "status", "notes",
	"created_at", "updated_at",
}

// OrderAdapter implements the OrderRepository interface
type OrderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewOrderAdapter creates a new order adapter
func NewOrderAdapter(client *postgres.Client) repositories.OrderRepository {
	return &OrderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new medicine order
func (a *OrderAdapter) Create(ctx context.Context, order *entities.MedicineOrder) error {
	record := goqu.Record{
		"id":               order.ID,
		"patient_id":       order.PatientID,
		"pharmacy_id":      order.PharmacyID,
		"medicines":        order.Medicines,
		"delivery_address": order.DeliveryAddress,
		"phone":            order.Phone,
		"payment_method":   order.PaymentMethod,
		"is_urgent":        order.IsUrgent,
		"status":           order.Status,
		"notes":            order.Notes,
		"created_at":       order.CreatedAt,
		"updated_at":       order.UpdatedAt,
	}

	query, args, err := a.db.Insert("medicine_orders").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create order", err)
	}

	return nil
}

// GetByID retrieves an order by ID
func (a *OrderAdapter) GetByID(ctx context.Context, id string) (*entities.MedicineOrder, error) {
	query, args, err := a.db.Select(orderColumns...).
		From("medicine_orders").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	order, err := a.scanOrderRow(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get order", err)
	}

	return order, nil
}

// UpdateStatus transitions an order to a new status
func (a *OrderAdapter) UpdateStatus(ctx context.Context, id string, status entities.OrderStatus) error {
	query, args, err := a.db.Update("medicine_orders").
		Set(goqu.Record{
			"status":     status,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update order", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}

	return nil
}

// ListByPatient retrieves a patient's orders, newest first
func (a *OrderAdapter) ListByPatient(ctx context.Context, patientID string, filter repositories.OrderFilter) ([]*entities.MedicineOrder, error) {
	return a.list(ctx, goqu.Ex{"patient_id": patientID}, filter)
}

// ListByPharmacy retrieves a pharmacy's orders, newest first
func (a *OrderAdapter) ListByPharmacy(ctx context.Context, pharmacyID string, filter repositories.OrderFilter) ([]*entities.MedicineOrder, error) {
	return a.list(ctx, goqu.Ex{"pharmacy_id": pharmacyID}, filter)
}

func (a *OrderAdapter) list(ctx context.Context, where goqu.Ex, filter repositories.OrderFilter) ([]*entities.MedicineOrder, error) {
	ds := a.db.Select(orderColumns...).
		From("medicine_orders").
		Where(where)

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}

	ds = ds.Order(goqu.I("created_at").Desc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list orders", err)
	}
	defer rows.Close()

	var orders []*entities.MedicineOrder
	for rows.Next() {
		order, err := a.scanOrderRow(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan order", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating orders", err)
	}

	return orders, nil
}

func (a *OrderAdapter) scanOrderRow(row rowScanner) (*entities.MedicineOrder, error) {
	order := &entities.MedicineOrder{}
	var phone, notes sql.NullString

	err := row.Scan(
		&order.ID,
		&order.PatientID,
		&order.PharmacyID,
		&order.Medicines,
		&order.DeliveryAddress,
		&phone,
		&order.PaymentMethod,
		&order.IsUrgent,
		&order.Status,
		&notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Phone = phone.String
	order.Notes = notes.String

	return order, nil
}
