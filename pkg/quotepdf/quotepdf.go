package quotepdf

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	skipqrcode "github.com/skip2/go-qrcode"

	"github.com/quoteforge/quoteforge/pkg/costing"
	"github.com/quoteforge/quoteforge/pkg/tier"
)

var (
	colorPrimary   = [3]int{30, 58, 95}    // dark navy
	colorTextDark  = [3]int{44, 62, 80}    // body text
	colorTextMuted = [3]int{127, 140, 141} // labels
	colorTableAlt  = [3]int{241, 245, 249} // alternating row
	colorGridLine  = [3]int{220, 220, 220} // table borders
)

// Company identifies the print shop issuing the quote.
type Company struct {
	Name    string
	Email   string
	Website string
}

// Document holds everything the renderer needs for one quote.
type Document struct {
	QuoteNumber  string
	CustomerName string
	ProjectName  string
	IssuedAt     time.Time
	ValidUntil   time.Time
	Notes        string
	ViewURL      string // deep link embedded as a QR code when set
	Breakdown    costing.Breakdown
}

// Renderer produces customer-facing quote PDFs.
type Renderer struct {
	company Company
}

// NewRenderer creates a Renderer branded with the given company.
func NewRenderer(company Company) *Renderer {
	return &Renderer{company: company}
}

// Render builds a single-page A4 quote document.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	if doc.QuoteNumber == "" {
		return nil, ErrMissingQuoteNumber
	}
	if doc.CustomerName == "" {
		return nil, ErrMissingCustomer
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	r.writeHeader(pdf, doc)
	r.writeParties(pdf, doc)
	r.writeLineItems(pdf, doc.Breakdown)
	r.writeTotals(pdf, doc.Breakdown)
	if doc.Notes != "" {
		r.writeNotes(pdf, doc.Notes)
	}
	if doc.ViewURL != "" {
		if err := r.writeQRCode(pdf, doc.ViewURL); err != nil {
			return nil, err
		}
	}
	r.writeFooter(pdf, doc)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) writeHeader(pdf *fpdf.Fpdf, doc Document) {
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.Rect(0, 0, pageWidth, 8, "F")

	pdf.SetY(18)
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(0, 10, r.company.Name, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, "3D Print Quote", "", 1, "L", false, 0, "")

	pdf.SetY(18)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 8, fmt.Sprintf("Quote %s", doc.QuoteNumber), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, fmt.Sprintf("Issued %s", doc.IssuedAt.Format("January 2, 2006")), "", 1, "R", false, 0, "")
	if !doc.ValidUntil.IsZero() {
		pdf.CellFormat(0, 5, fmt.Sprintf("Valid until %s", doc.ValidUntil.Format("January 2, 2006")), "", 1, "R", false, 0, "")
	}
	pdf.SetY(48)
}

func (r *Renderer) writeParties(pdf *fpdf.Fpdf, doc Document) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, "PREPARED FOR", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 7, doc.CustomerName, "", 1, "L", false, 0, "")

	if doc.ProjectName != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
		pdf.CellFormat(0, 5, doc.ProjectName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (r *Renderer) writeLineItems(pdf *fpdf.Fpdf, b costing.Breakdown) {
	const (
		labelWidth  = 110.0
		amountWidth = 60.0
		rowHeight   = 8.0
	)

	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(labelWidth, rowHeight, "  Item", "", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, "Amount  ", "", 1, "R", true, 0, "")

	rows := []struct {
		label  string
		amount tier.Money
	}{
		{"Material", b.Material},
		{"Machine time", b.Machine},
		{"Energy", b.Energy},
		{"Labor", b.Labor},
	}

	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.SetFont("Arial", "", 10)
	pdf.SetDrawColor(colorGridLine[0], colorGridLine[1], colorGridLine[2])

	for i, row := range rows {
		fill := i%2 == 1
		pdf.SetFillColor(colorTableAlt[0], colorTableAlt[1], colorTableAlt[2])
		pdf.CellFormat(labelWidth, rowHeight, "  "+row.label, "B", 0, "L", fill, 0, "")
		pdf.CellFormat(amountWidth, rowHeight, row.amount.String()+"  ", "B", 1, "R", fill, 0, "")
	}
	pdf.Ln(4)
}

func (r *Renderer) writeTotals(pdf *fpdf.Fpdf, b costing.Breakdown) {
	const (
		labelWidth  = 110.0
		amountWidth = 60.0
		rowHeight   = 7.0
	)

	write := func(label string, amount tier.Money, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		pdf.CellFormat(labelWidth, rowHeight, "  "+label, "", 0, "R", false, 0, "")
		pdf.CellFormat(amountWidth, rowHeight, amount.String()+"  ", "", 1, "R", false, 0, "")
	}

	write(fmt.Sprintf("Subtotal (%d pcs)", b.Quantity), b.Subtotal, false)
	write("Margin", b.Margin, false)

	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(labelWidth, 9, "  Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(amountWidth, 9, b.Total.String()+"  ", "T", 1, "R", false, 0, "")

	write("Per unit", b.PerUnit, false)
	pdf.Ln(4)
}

func (r *Renderer) writeNotes(pdf *fpdf.Fpdf, notes string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, "NOTES", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.MultiCell(0, 5, notes, "", "L", false)
	pdf.Ln(4)
}

func (r *Renderer) writeQRCode(pdf *fpdf.Fpdf, url string) error {
	png, err := skipqrcode.Encode(url, skipqrcode.Medium, 256)
	if err != nil {
		return errors.Join(ErrQRCodeFailed, err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("quote-qr", opts, bytes.NewReader(png))

	pageWidth, pageHeight := pdf.GetPageSize()
	const size = 28.0
	pdf.ImageOptions("quote-qr", pageWidth-20-size, pageHeight-35-size, size, size, false, opts, 0, "")

	pdf.SetXY(pageWidth-20-size, pageHeight-34)
	pdf.SetFont("Arial", "", 7)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(size, 4, "View online", "", 0, "C", false, 0, "")
	return nil
}

func (r *Renderer) writeFooter(pdf *fpdf.Fpdf, doc Document) {
	_, pageHeight := pdf.GetPageSize()
	pdf.SetY(pageHeight - 20)
	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])

	contact := r.company.Email
	if r.company.Website != "" {
		if contact != "" {
			contact += "  |  "
		}
		contact += r.company.Website
	}
	pdf.CellFormat(0, 5, contact, "", 1, "C", false, 0, "")
}
