package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

func validStockItem() *entities.StockItem {
	return &entities.StockItem{
		PharmacyID:        "pha-1",
		MedicineName:      "Paracetamol",
		BatchNumber:       "B-100",
		Quantity:          50,
		SellingPrice:      2.5,
		MinimumStockLevel: 10,
	}
}

func TestStockService_Add(t *testing.T) {
	repo := new(MockStockRepository)
	bus := new(MockEventBus)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(i *entities.StockItem) bool {
		return i.ID != ""
	})).Return(nil)
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := services.NewStockService(repo, bus)
	item := validStockItem()

	err := svc.Add(context.Background(), item)

	assert.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	bus.AssertCalled(t, "Publish", mock.Anything, "pharmacy:pha-1", mock.Anything)
}

func TestStockService_Add_DuplicateBatchSurfacesConflict(t *testing.T) {
	repo := new(MockStockRepository)
	repo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.NewConflictError("batch number already exists for this pharmacy"))

	svc := services.NewStockService(repo, nil)

	err := svc.Add(context.Background(), validStockItem())

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestStockService_Update_WrongPharmacyForbidden(t *testing.T) {
	repo := new(MockStockRepository)
	item := validStockItem()
	item.ID = "stk-1"
	repo.On("GetByID", mock.Anything, "stk-1").
		Return(&entities.StockItem{ID: "stk-1", PharmacyID: "pha-other"}, nil)

	svc := services.NewStockService(repo, nil)

	err := svc.Update(context.Background(), "pha-1", item)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	repo.AssertNotCalled(t, "Update")
}

func TestStockService_Update_PharmacyCannotBeReassigned(t *testing.T) {
	repo := new(MockStockRepository)
	item := validStockItem()
	item.ID = "stk-1"
	item.PharmacyID = "pha-hijack"
	repo.On("GetByID", mock.Anything, "stk-1").
		Return(&entities.StockItem{ID: "stk-1", PharmacyID: "pha-1"}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(i *entities.StockItem) bool {
		return i.PharmacyID == "pha-1"
	})).Return(nil)

	svc := services.NewStockService(repo, nil)

	err := svc.Update(context.Background(), "pha-1", item)

	assert.NoError(t, err)
	assert.Equal(t, "pha-1", item.PharmacyID)
}

func TestStockService_Remove_WrongPharmacyForbidden(t *testing.T) {
	repo := new(MockStockRepository)
	repo.On("GetByID", mock.Anything, "stk-1").
		Return(&entities.StockItem{ID: "stk-1", PharmacyID: "pha-other"}, nil)

	svc := services.NewStockService(repo, nil)

	err := svc.Remove(context.Background(), "pha-1", "stk-1")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	repo.AssertNotCalled(t, "Delete")
}

func TestStockService_ListForPharmacy_Summary(t *testing.T) {
	repo := new(MockStockRepository)
	repo.On("ListByPharmacy", mock.Anything, "pha-1").
		Return([]*entities.StockItem{
			{ID: "stk-1", Quantity: 10, SellingPrice: 2.5, MinimumStockLevel: 10},
			{ID: "stk-2", Quantity: 100, SellingPrice: 1.0, MinimumStockLevel: 10},
		}, nil)

	svc := services.NewStockService(repo, nil)

	summary, err := svc.ListForPharmacy(context.Background(), "pha-1")

	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalItems)
	assert.Equal(t, 125.0, summary.TotalValue)
	assert.Equal(t, 1, summary.LowStock, "quantity at the threshold counts as low")
}

func TestStockService_ExpiringForPharmacy(t *testing.T) {
	soon := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	far := time.Now().AddDate(0, 6, 0).Format("2006-01-02")
	past := time.Now().AddDate(0, 0, -3).Format("2006-01-02")

	repo := new(MockStockRepository)
	repo.On("ListByPharmacy", mock.Anything, "pha-1").
		Return([]*entities.StockItem{
			{ID: "stk-soon", ExpiryDate: soon},
			{ID: "stk-far", ExpiryDate: far},
			{ID: "stk-past", ExpiryDate: past},
			{ID: "stk-none", ExpiryDate: ""},
		}, nil)

	svc := services.NewStockService(repo, nil)

	expiring, err := svc.ExpiringForPharmacy(context.Background(), "pha-1")

	require.NoError(t, err)
	require.Len(t, expiring, 2, "already-expired batches count, unset dates do not")
	assert.Equal(t, "stk-soon", expiring[0].ID)
	assert.Equal(t, "stk-past", expiring[1].ID)
}

func TestStockService_LowStockForPharmacy(t *testing.T) {
	repo := new(MockStockRepository)
	repo.On("ListByPharmacy", mock.Anything, "pha-1").
		Return([]*entities.StockItem{
			{ID: "stk-low", Quantity: 5, MinimumStockLevel: 10},
			{ID: "stk-ok", Quantity: 50, MinimumStockLevel: 10},
		}, nil)

	svc := services.NewStockService(repo, nil)

	low, err := svc.LowStockForPharmacy(context.Background(), "pha-1")

	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "stk-low", low[0].ID)
}
