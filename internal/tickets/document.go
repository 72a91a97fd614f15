package tickets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/models"
)

const (
	pageMargin    = 15.0
	labelWidth    = 50.0
	rowHeight     = 8.0
	scanCodeWidth = 60.0
	logoWidth     = 30.0
	watermarkSize = 120.0
)

// Logo is an optional image printed in the header and as a faded watermark.
type Logo struct {
	Data   []byte
	Format string
}

// LoadLogo inspects data and reports its image format. Only formats the PDF writer
// can embed are accepted.
func LoadLogo(data []byte) (*Logo, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	if pdfImageType(format) == "" {
		return nil, fmt.Errorf("unsupported logo format %q", format)
	}
	return &Logo{Data: data, Format: format}, nil
}

func pdfImageType(format string) string {
	switch format {
	case "png":
		return "PNG"
	case "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	}
	return ""
}

// Document is everything printed on one ticket.
type Document struct {
	Registration models.Registration
	Event        models.EventInfo
	Logistics    models.EventLogistics
	ScanCode     []byte
	Logo         *Logo
}

// RenderDocument lays out an A4 ticket. Page streams are left uncompressed.
func RenderDocument(doc Document) ([]byte, error) {
	if len(doc.ScanCode) == 0 {
		return nil, fmt.Errorf("%w: ticket has no scan code", apperrors.ErrGeneration)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle("Ingresso "+doc.Registration.ID.String(), true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, pageHeight := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	if doc.Logo != nil {
		opts := fpdf.ImageOptions{ImageType: pdfImageType(doc.Logo.Format)}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(doc.Logo.Data))

		pdf.SetAlpha(0.1, "Normal")
		pdf.ImageOptions("logo", (pageWidth-watermarkSize)/2, (pageHeight-watermarkSize)/2, watermarkSize, 0, false, opts, 0, "")
		pdf.SetAlpha(1, "Normal")

		pdf.ImageOptions("logo", pageWidth-pageMargin-logoWidth, pageMargin, logoWidth, 0, false, opts, 0, "")
	}

	pdf.SetY(pageMargin + 10)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(contentWidth, 10, tr(doc.Event.Title), "", "C", false)
	pdf.SetFont("Helvetica", "", 13)
	pdf.MultiCell(contentWidth, 7, tr(doc.Event.Subtitle), "", "C", false)
	pdf.Ln(8)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(contentWidth, rowHeight, tr(title), "B", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(labelWidth, rowHeight, tr(label), "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(contentWidth-labelWidth, rowHeight, tr(value), "1", 1, "L", false, 0, "")
	}

	reg := doc.Registration
	section("Dados do participante")
	row("Nome completo", reg.FullName)
	if reg.SecondaryName != nil && strings.TrimSpace(*reg.SecondaryName) != "" {
		row("Segundo nome", *reg.SecondaryName)
	}
	row("Telefone", reg.Phone)
	row("E-mail", reg.Email)
	row("Tipo de ingresso", string(reg.TicketType))
	pdf.Ln(6)

	section("Informações do evento")
	row("Data", doc.Logistics.Date)
	row("Horário", doc.Logistics.Time)
	row("Local", doc.Logistics.Venue)
	pdf.Ln(8)

	pdf.RegisterImageOptionsReader("scancode", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(doc.ScanCode))
	pdf.ImageOptions("scancode", (pageWidth-scanCodeWidth)/2, pdf.GetY(), scanCodeWidth, scanCodeWidth, false,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetY(pdf.GetY() + scanCodeWidth + 4)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(contentWidth, 6, tr("Apresente este QR code na entrada do evento."), "", "C", false)
	pdf.SetFont("Courier", "", 9)
	pdf.CellFormat(contentWidth, 6, "ID: "+reg.ID.String(), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: render ticket document: %w", apperrors.ErrGeneration, err)
	}
	return buf.Bytes(), nil
}
