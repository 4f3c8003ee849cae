// Package receipts renders single-page payment receipts as PDF.
package receipts

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Data is the flat projection a receipt is rendered from. Method is a display
// constant chosen by the caller, not read from the payment record.
type Data struct {
	BusinessName string
	ClientName   string
	ClientDNI    string
	Month        string
	Year         int
	Amount       float64
	Method       string
	Status       string
	IssuedAt     time.Time
}

// Render writes a one-page A4 receipt to w.
func Render(w io.Writer, d Data) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Business identity block
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(d.BusinessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr("Servicio de Internet y Cable"), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, tr("RECIBO DE PAGO"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	row := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 8, tr(label), "B", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, tr(value), "B", 1, "L", false, 0, "")
	}

	row("Cliente:", d.ClientName)
	row("DNI:", d.ClientDNI)
	row("Periodo:", fmt.Sprintf("%s %d", d.Month, d.Year))
	row("Fecha de emisión:", d.IssuedAt.Format("02/01/2006"))
	row("Método de pago:", d.Method)

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(50, 10, tr("TOTAL:"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, fmt.Sprintf("S/ %.2f", d.Amount), "", 1, "L", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 128, 0)
	pdf.CellFormat(0, 8, tr(d.Status), "1", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, tr("Este documento es un comprobante interno y no reemplaza a un comprobante electrónico."), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, tr("Gracias por su preferencia."), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}
