package pdfgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() PurchaseOrderData {
	return PurchaseOrderData{
		OrderNumber:   "PO-20260827-001",
		SupplierName:  "山田商事",
		ContactPerson: "田中",
		CreatedBy:     "高橋",
		CreatedAt:     time.Date(2026, 8, 27, 10, 0, 0, 0, time.Local),
		DailyCount:    1,
		Items: []LineItem{
			{Code: "C-001", OrderCode: "ORD-001", Name: "軍手", Quantity: 10, Unit: "組", UnitPrice: 150, TotalAmount: 1500, Deadline: "通常"},
			{Code: "C-002", OrderCode: "ORD-002", Name: "切削油", Quantity: 2, Unit: "缶", UnitPrice: 3200, TotalAmount: 6400, Deadline: "至急", Note: "20L"},
		},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	gen := &Generator{CompanyName: "テスト工業", DepartmentName: "資材部"}
	out, err := gen.Render(testData())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderRejectsEmptyItems(t *testing.T) {
	gen := &Generator{CompanyName: "テスト工業"}
	data := testData()
	data.Items = nil
	_, err := gen.Render(data)
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,500", formatNumber(1500))
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
