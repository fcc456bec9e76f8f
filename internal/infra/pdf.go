package infra

// pdf.go — invoice PDF generation using go-pdf/fpdf.
// Generates A4 invoices with company header, client block, billing line
// table, VAT summary and balance. Output goes to storagePath/{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ciprianbratila/ortho-orders/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateInvoicePDF renders the invoice to disk and returns the file path.
// storagePath is created if needed.
func GenerateInvoicePDF(inv *model.Invoice, companyName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := strings.ReplaceAll(inv.Number, "/", "-") + ".pdf"
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, companyName, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW/2, 8, "INVOICE "+inv.Number, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 8, "Issued: "+inv.IssueDate.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Order: "+inv.OrderNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Due: "+inv.DueDate.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Client block ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Billed to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 5, inv.ClientFirstName+" "+inv.ClientLastName, "", 1, "L", false, 0, "")
	if inv.ClientNationalID != "" {
		pdf.CellFormat(contentW, 5, "ID: "+inv.ClientNationalID, "", 1, "L", false, 0, "")
	}
	if inv.ClientAddress != "" {
		pdf.CellFormat(contentW, 5, inv.ClientAddress, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Line table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // description
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.18 // unit price
	col4 := contentW * 0.18 // line total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range inv.Lines {
		description := line.Description
		if len(description) > 48 {
			description = description[:47] + "…"
		}
		pdf.CellFormat(col1, 6, description, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, line.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, line.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, inv.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelW, 6, fmt.Sprintf("VAT (%s%%):", inv.VATRate.StringFixed(0)), "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, inv.VATAmount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 8, inv.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if !inv.Advance.IsZero() {
		pdf.CellFormat(labelW, 6, "Advance paid:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "-"+inv.Advance.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !inv.InsuranceAmount.IsZero() {
		pdf.CellFormat(labelW, 6, "Insurance coverage:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "-"+inv.InsuranceAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 7, "Balance due:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, inv.Balance.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	if inv.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, inv.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
