package repositories

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"consumable-app/apperr"
	"consumable-app/models"
	"consumable-app/pdfgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDispatchRepo(t *testing.T, db *gorm.DB) *DispatchRepository {
	t.Helper()
	gen := &pdfgen.Generator{CompanyName: "テスト工業", DepartmentName: "資材部"}
	return NewDispatchRepository(db, zap.NewNop(), gen, t.TempDir())
}

func stagePreparedOrder(t *testing.T, db *gorm.DB, item *models.Consumable, quantity int) *models.Order {
	t.Helper()
	order := &models.Order{
		ConsumableID:  item.ID,
		Code:          item.Code,
		OrderCode:     item.OrderCode,
		Name:          item.Name,
		Quantity:      quantity,
		Unit:          item.Unit,
		UnitPrice:     item.UnitPrice,
		TotalAmount:   float64(quantity) * item.UnitPrice,
		Deadline:      "通常",
		RequesterName: "佐藤",
		SupplierID:    item.SupplierID,
		Status:        models.OrderStatusPrepared,
		RequestedDate: time.Now(),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestAddOrderToDispatch(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)

	order := models.Order{
		ConsumableID: item.ID, Code: item.Code, Name: item.Name, Quantity: 2,
		SupplierID: item.SupplierID, Status: models.OrderStatusRequested, RequestedDate: time.Now(),
	}
	require.NoError(t, db.Create(&order).Error)

	require.NoError(t, repo.AddOrderToDispatch(order.ID))

	var moved models.Order
	require.NoError(t, db.First(&moved, order.ID).Error)
	assert.Equal(t, models.OrderStatusPrepared, moved.Status)

	var c models.Consumable
	require.NoError(t, db.First(&c, item.ID).Error)
	assert.Equal(t, models.ConsumablePrepared, c.OrderStatus)

	// Already staged orders cannot be staged twice.
	err := repo.AddOrderToDispatch(order.ID)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	err = repo.AddOrderToDispatch(99999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestAddDirect(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)
	orphan := createConsumable(t, db, "C-002", 10, 5, nil)

	order, err := repo.AddDirect(AddDirectInput{ConsumableID: item.ID, Quantity: 4, CreatedBy: "佐藤"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPrepared, order.Status)
	assert.Equal(t, models.OrderTypeDirect, order.OrderType)
	assert.Equal(t, "通常", order.Deadline)
	assert.Equal(t, float64(400), order.TotalAmount)

	_, err = repo.AddDirect(AddDirectInput{ConsumableID: orphan.ID, Quantity: 1})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = repo.AddDirect(AddDirectInput{ConsumableID: 99999, Quantity: 1})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestPreparedBySupplierGrouping(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplierA := createSupplier(t, db, "あさひ商会")
	supplierB := createSupplier(t, db, "山田商事")
	itemA1 := createConsumable(t, db, "C-A1", 10, 5, &supplierA.ID)
	itemA2 := createConsumable(t, db, "C-A2", 10, 5, &supplierA.ID)
	itemB1 := createConsumable(t, db, "C-B1", 10, 5, &supplierB.ID)

	stagePreparedOrder(t, db, itemA1, 1)
	stagePreparedOrder(t, db, itemA2, 2)
	stagePreparedOrder(t, db, itemB1, 3)

	groups, err := repo.PreparedBySupplier()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "あさひ商会", groups[0].SupplierName)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "山田商事", groups[1].SupplierName)
	assert.Len(t, groups[1].Items, 1)
	assert.NotEmpty(t, groups[0].SupplierEmail)
}

func TestUpdatePreparedItem(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)
	order := stagePreparedOrder(t, db, item, 2)

	quantity := 6
	updated, err := repo.UpdatePreparedItem(order.ID, UpdatePreparedInput{Quantity: &quantity})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Quantity)
	assert.Equal(t, float64(600), updated.TotalAmount)

	_, err = repo.UpdatePreparedItem(order.ID, UpdatePreparedInput{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	zero := 0
	_, err = repo.UpdatePreparedItem(order.ID, UpdatePreparedInput{Quantity: &zero})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// Orders no longer in 発注準備 are not editable.
	require.NoError(t, db.Model(order).Update("status", models.OrderStatusOrdered).Error)
	note := "至急"
	_, err = repo.UpdatePreparedItem(order.ID, UpdatePreparedInput{Note: &note})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCreateDispatchOrder(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplierA := createSupplier(t, db, "あさひ商会")
	supplierB := createSupplier(t, db, "山田商事")
	itemA1 := createConsumable(t, db, "C-A1", 10, 5, &supplierA.ID)
	itemA2 := createConsumable(t, db, "C-A2", 10, 5, &supplierA.ID)
	itemB1 := createConsumable(t, db, "C-B1", 10, 5, &supplierB.ID)

	orderA1 := stagePreparedOrder(t, db, itemA1, 1)
	orderA2 := stagePreparedOrder(t, db, itemA2, 2)
	orderB1 := stagePreparedOrder(t, db, itemB1, 3)

	// The other supplier's order and a bogus ID are dropped silently.
	dispatch, err := repo.CreateDispatchOrder(CreateDispatchInput{
		SupplierID: supplierA.ID,
		ItemIDs:    []uint{orderA1.ID, orderA2.ID, orderB1.ID, 99999},
		CreatedBy:  "高橋",
	})
	require.NoError(t, err)

	today := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("PO-%s-001", today), dispatch.OrderNumber)
	assert.Equal(t, 2, dispatch.TotalItems)
	assert.Equal(t, float64(300), dispatch.TotalAmount)
	assert.Equal(t, models.DispatchStatusUnsent, dispatch.Status)

	var items []models.DispatchOrderItem
	require.NoError(t, db.Where("dispatch_order_id = ?", dispatch.ID).Find(&items).Error)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.NotNil(t, it.ConsumableID)
		assert.NotZero(t, it.OriginalOrderID)
		assert.NotEmpty(t, it.OrderCode)
	}

	var a1, b1 models.Order
	require.NoError(t, db.First(&a1, orderA1.ID).Error)
	require.NoError(t, db.First(&b1, orderB1.ID).Error)
	assert.Equal(t, models.OrderStatusOrdered, a1.Status)
	require.NotNil(t, a1.OrderedDate)
	assert.Equal(t, models.OrderStatusPrepared, b1.Status)
	assert.Nil(t, b1.OrderedDate)

	// The consumable's own flag is not advanced by consolidation.
	var c models.Consumable
	require.NoError(t, db.First(&c, itemA1.ID).Error)
	assert.Equal(t, models.ConsumableNotOrdered, c.OrderStatus)

	// PDF was rendered after commit.
	var refreshed models.DispatchOrder
	require.NoError(t, db.First(&refreshed, dispatch.ID).Error)
	require.NotNil(t, refreshed.PDFPath)
	_, statErr := os.Stat(*refreshed.PDFPath)
	assert.NoError(t, statErr)
}

func TestCreateDispatchOrderValidation(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplier := createSupplier(t, db, "山田商事")

	_, err := repo.CreateDispatchOrder(CreateDispatchInput{SupplierID: supplier.ID})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = repo.CreateDispatchOrder(CreateDispatchInput{SupplierID: 99999, ItemIDs: []uint{1}})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	// No staged items left after filtering: nothing to consolidate and the
	// sequence row must not burn a visible number for the next caller.
	_, err = repo.CreateDispatchOrder(CreateDispatchInput{SupplierID: supplier.ID, ItemIDs: []uint{99999}})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

// Numbering is one counter per day across all suppliers.
func TestOrderNumberSequenceIsGlobal(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplierA := createSupplier(t, db, "あさひ商会")
	supplierB := createSupplier(t, db, "山田商事")
	today := time.Now().Format("20060102")

	for i, supplier := range []*models.Supplier{supplierA, supplierB, supplierA, supplierB} {
		item := createConsumable(t, db, fmt.Sprintf("C-%03d", i), 10, 5, &supplier.ID)
		order := stagePreparedOrder(t, db, item, 1)
		dispatch, err := repo.CreateDispatchOrder(CreateDispatchInput{
			SupplierID: supplier.ID,
			ItemIDs:    []uint{order.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PO-%s-%03d", today, i+1), dispatch.OrderNumber)
	}
}

func TestGetOrGeneratePDFIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)
	order := stagePreparedOrder(t, db, item, 2)

	dispatch, err := repo.CreateDispatchOrder(CreateDispatchInput{
		SupplierID: supplier.ID,
		ItemIDs:    []uint{order.ID},
	})
	require.NoError(t, err)

	path1, number, err := repo.GetOrGeneratePDF(dispatch.ID)
	require.NoError(t, err)
	assert.Equal(t, dispatch.OrderNumber, number)

	path2, _, err := repo.GetOrGeneratePDF(dispatch.ID)
	require.NoError(t, err)
	assert.Equal(t, path1, path2)

	// A deleted file is regenerated at the same path.
	require.NoError(t, os.Remove(path1))
	path3, _, err := repo.GetOrGeneratePDF(dispatch.ID)
	require.NoError(t, err)
	assert.Equal(t, path1, path3)
	_, statErr := os.Stat(path3)
	assert.NoError(t, statErr)

	// A NULL pdf_path (render failed at creation) is filled in on first access.
	require.NoError(t, db.Model(&models.DispatchOrder{}).Where("id = ?", dispatch.ID).Update("pdf_path", nil).Error)
	require.NoError(t, os.Remove(path1))
	path4, _, err := repo.GetOrGeneratePDF(dispatch.ID)
	require.NoError(t, err)
	assert.Equal(t, path1, path4)
	var refreshed models.DispatchOrder
	require.NoError(t, db.First(&refreshed, dispatch.ID).Error)
	require.NotNil(t, refreshed.PDFPath)

	_, _, err = repo.GetOrGeneratePDF(99999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMarkSent(t *testing.T) {
	db := newTestDB(t)
	repo := newDispatchRepo(t, db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)
	order := stagePreparedOrder(t, db, item, 2)

	dispatch, err := repo.CreateDispatchOrder(CreateDispatchInput{
		SupplierID: supplier.ID,
		ItemIDs:    []uint{order.ID},
	})
	require.NoError(t, err)

	require.NoError(t, repo.MarkSent(dispatch.ID, "yamada@example.co.jp"))

	detail, err := repo.GetDispatchOrder(dispatch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchStatusSent, detail.Status)
	assert.Equal(t, "yamada@example.co.jp", detail.SentEmail)
	require.NotNil(t, detail.SentAt)
	assert.Len(t, detail.Items, 1)
	assert.Equal(t, supplier.Email, detail.SupplierEmail)
}
