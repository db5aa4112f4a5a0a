package controllers

import (
	"sort"
	"time"

	"consumable-app/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HistoryController struct {
	DB *gorm.DB
}

func NewHistoryController(db *gorm.DB) *HistoryController {
	return &HistoryController{DB: db}
}

// HistoryRow is the merged view over inbound and outbound movements. Type is
// "inbound" or "outbound"; InboundType is empty for outbound rows.
type HistoryRow struct {
	ID                 uint      `json:"id"`
	Type               string    `json:"type"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Quantity           int       `json:"quantity"`
	EmployeeName       string    `json:"employee_name"`
	EmployeeDepartment string    `json:"employee_department"`
	UnitPrice          float64   `json:"unit_price"`
	TotalAmount        float64   `json:"total_amount"`
	Note               string    `json:"note"`
	InboundType        string    `json:"inbound_type,omitempty"`
	MovementDate       time.Time `json:"movement_date"`
}

type historyFilter struct {
	Search     string
	Department string
	From       *time.Time
	To         *time.Time
}

func parseHistoryFilter(ctx *fiber.Ctx) historyFilter {
	f := historyFilter{
		Search:     ctx.Query("search"),
		Department: ctx.Query("department"),
	}
	if from, err := time.ParseInLocation("2006-01-02", ctx.Query("date_from"), time.Local); err == nil {
		f.From = &from
	}
	if to, err := time.ParseInLocation("2006-01-02", ctx.Query("date_to"), time.Local); err == nil {
		end := to.AddDate(0, 0, 1)
		f.To = &end
	}
	return f
}

func applyHistoryFilter(query *gorm.DB, f historyFilter, dateColumn string) *gorm.DB {
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ? OR employee_name LIKE ?", like, like, like)
	}
	if f.Department != "" {
		query = query.Where("employee_department = ?", f.Department)
	}
	if f.From != nil {
		query = query.Where(dateColumn+" >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where(dateColumn+" < ?", *f.To)
	}
	return query
}

// GetHistory returns inbound and outbound movements merged and sorted newest
// first. The type query parameter restricts to one side.
func (c *HistoryController) GetHistory(ctx *fiber.Ctx) error {
	filter := parseHistoryFilter(ctx)
	movementType := ctx.Query("type")

	var rows []HistoryRow

	if movementType == "" || movementType == "outbound" {
		var outbound []models.OutboundHistory
		query := applyHistoryFilter(c.DB.Model(&models.OutboundHistory{}), filter, "outbound_date")
		if err := query.Order("outbound_date DESC").Find(&outbound).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to fetch outbound history",
			})
		}
		for _, h := range outbound {
			rows = append(rows, HistoryRow{
				ID:                 h.ID,
				Type:               "outbound",
				Code:               h.Code,
				Name:               h.Name,
				Quantity:           h.Quantity,
				EmployeeName:       h.EmployeeName,
				EmployeeDepartment: h.EmployeeDepartment,
				UnitPrice:          h.UnitPrice,
				TotalAmount:        h.TotalAmount,
				Note:               h.Note,
				MovementDate:       h.OutboundDate,
			})
		}
	}

	if movementType == "" || movementType == "inbound" {
		var inbound []models.InboundHistory
		query := applyHistoryFilter(c.DB.Model(&models.InboundHistory{}), filter, "inbound_date")
		if inboundType := ctx.Query("inbound_type"); inboundType != "" {
			query = query.Where("inbound_type = ?", inboundType)
		}
		if err := query.Order("inbound_date DESC").Find(&inbound).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to fetch inbound history",
			})
		}
		for _, h := range inbound {
			rows = append(rows, HistoryRow{
				ID:                 h.ID,
				Type:               "inbound",
				Code:               h.Code,
				Name:               h.Name,
				Quantity:           h.Quantity,
				EmployeeName:       h.EmployeeName,
				EmployeeDepartment: h.EmployeeDepartment,
				UnitPrice:          h.UnitPrice,
				TotalAmount:        h.TotalAmount,
				Note:               h.Note,
				InboundType:        h.InboundType,
				MovementDate:       h.InboundDate,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].MovementDate.After(rows[j].MovementDate)
	})

	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

// Departments feeds the history screen's department filter dropdown.
func (c *HistoryController) Departments(ctx *fiber.Ctx) error {
	departments := map[string]bool{}
	var names []string

	c.DB.Model(&models.OutboundHistory{}).
		Distinct("employee_department").
		Where("employee_department != ''").
		Pluck("employee_department", &names)
	for _, n := range names {
		departments[n] = true
	}

	names = names[:0]
	c.DB.Model(&models.InboundHistory{}).
		Distinct("employee_department").
		Where("employee_department != ''").
		Pluck("employee_department", &names)
	for _, n := range names {
		departments[n] = true
	}

	merged := make([]string, 0, len(departments))
	for n := range departments {
		merged = append(merged, n)
	}
	sort.Strings(merged)

	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    merged,
	})
}
