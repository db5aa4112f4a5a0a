// Package pdfgen renders supplier-facing purchase orders as single-page A4
// PDFs: title, supplier/company header, approval grid, line-item table and an
// order-number footer.
package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Generator struct {
	// FontPath points at a TTF with Japanese glyphs. Without it gofpdf falls
	// back to a core font and the Japanese labels will not survive, so the
	// caller should treat an empty path as a configuration problem.
	FontPath       string
	CompanyName    string
	DepartmentName string
}

type LineItem struct {
	Code        string
	OrderCode   string
	Name        string
	Quantity    int
	Unit        string
	UnitPrice   float64
	TotalAmount float64
	Deadline    string
	Note        string
}

type PurchaseOrderData struct {
	OrderNumber   string
	SupplierName  string
	ContactPerson string
	CreatedBy     string
	CreatedAt     time.Time
	DailyCount    int
	Note          string
	Items         []LineItem
}

var jpPrinter = message.NewPrinter(language.Japanese)

func formatNumber(n int) string {
	return jpPrinter.Sprintf("%d", n)
}

// Render produces the PDF bytes for one purchase order.
func (g *Generator) Render(data PurchaseOrderData) ([]byte, error) {
	if len(data.Items) == 0 {
		return nil, fmt.Errorf("no items to render for %s", data.OrderNumber)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 15)

	font := "Helvetica"
	if g.FontPath != "" {
		pdf.AddUTF8Font("japanese", "", g.FontPath)
		font = "japanese"
	}

	pdf.AddPage()
	pageWidth, pageHeight := pdf.GetPageSize()

	// Title
	pdf.SetFont(font, "", 24)
	pdf.SetY(20)
	pdf.CellFormat(pageWidth-30, 12, "注文書", "", 1, "C", false, 0, "")

	// Supplier block (left)
	pdf.SetY(40)
	pdf.SetFont(font, "", 12)
	pdf.CellFormat(100, 7, fmt.Sprintf("%s 御中", data.SupplierName), "", 1, "L", false, 0, "")
	if data.ContactPerson != "" {
		pdf.SetFont(font, "", 10)
		pdf.CellFormat(100, 6, fmt.Sprintf("%s 様", data.ContactPerson), "", 1, "L", false, 0, "")
	}

	// Company block (right)
	rightX := pageWidth - 15 - 70
	pdf.SetXY(rightX, 40)
	pdf.SetFont(font, "", 14)
	pdf.CellFormat(70, 8, g.CompanyName, "", 2, "L", false, 0, "")
	pdf.SetFont(font, "", 10)
	pdf.CellFormat(70, 5, fmt.Sprintf("発行日: %s", time.Now().Format("2006年01月02日")), "", 2, "L", false, 0, "")
	pdf.CellFormat(70, 5, fmt.Sprintf("発行部門: %s", g.DepartmentName), "", 2, "L", false, 0, "")

	g.drawApprovalGrid(pdf, font, rightX, data)
	g.drawItemsTable(pdf, font, data.Items)

	if data.Note != "" {
		pdf.Ln(6)
		pdf.SetFont(font, "", 9)
		pdf.CellFormat(pageWidth-30, 5, fmt.Sprintf("備考: %s", data.Note), "", 1, "L", false, 0, "")
	}

	// Footer
	pdf.SetFont(font, "", 8)
	pdf.SetXY(15, pageHeight-15)
	pdf.CellFormat(100, 5, fmt.Sprintf("注文書番号: %s", data.OrderNumber), "", 0, "L", false, 0, "")
	pdf.SetXY(pageWidth-45, pageHeight-15)
	pdf.CellFormat(30, 5, "1 / 1", "", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// drawApprovalGrid draws the 承認/確認/作成 sign-off grid. Only the 作成 cell
// is prefilled: creator name, date, and the order's rank among the supplier's
// orders that day.
func (g *Generator) drawApprovalGrid(pdf *gofpdf.Fpdf, font string, x float64, data PurchaseOrderData) {
	colWidth := 22.0
	headers := []string{"承認", "確認", "作成"}

	pdf.SetXY(x, 62)
	pdf.SetFont(font, "", 8)
	pdf.SetFillColor(220, 220, 220)
	for _, h := range headers {
		pdf.CellFormat(colWidth, 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	createdCell := fmt.Sprintf("%s\n%s\nNo.%d",
		data.CreatedBy,
		data.CreatedAt.Format("2006/01/02"),
		data.DailyCount)

	pdf.SetX(x)
	pdf.CellFormat(colWidth, 15, "", "1", 0, "C", false, 0, "")
	pdf.CellFormat(colWidth, 15, "", "1", 0, "C", false, 0, "")
	y := pdf.GetY()
	pdf.MultiCell(colWidth, 5, createdCell, "1", "C", false)
	pdf.SetY(y + 15)
}

func (g *Generator) drawItemsTable(pdf *gofpdf.Fpdf, font string, items []LineItem) {
	headers := []string{"No", "発注コード", "コード", "商品名・仕様", "数量", "単位", "単価", "金額", "納期", "裏議書No", "備考"}
	widths := []float64{8, 18, 18, 42, 12, 10, 16, 18, 14, 14, 10}

	pdf.SetY(95)
	pdf.SetFont(font, "", 7)
	pdf.SetFillColor(120, 120, 120)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	for idx, item := range items {
		note := item.Note
		if note == "" {
			note = "-"
		}
		cells := []struct {
			text  string
			align string
		}{
			{fmt.Sprintf("%d", idx+1), "C"},
			{item.OrderCode, "L"},
			{item.Code, "L"},
			{item.Name, "L"},
			{formatNumber(item.Quantity), "R"},
			{item.Unit, "C"},
			{formatNumber(int(item.UnitPrice)), "R"},
			{formatNumber(int(item.TotalAmount)), "R"},
			{item.Deadline, "C"},
			{"", "C"},
			{note, "L"},
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell.text, "1", 0, cell.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	// Total row
	var total int
	for _, item := range items {
		total += int(item.TotalAmount)
	}
	offset := widths[0] + widths[1] + widths[2] + widths[3] + widths[4] + widths[5]
	pdf.SetX(15 + offset)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(widths[6], 6, "合計", "1", 0, "C", true, 0, "")
	pdf.CellFormat(widths[7], 6, formatNumber(total), "1", 1, "R", true, 0, "")
}
