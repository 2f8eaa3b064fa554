package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/doctrack-api/internal/models"
)

// Dataset is a simple table with ordered headers.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

var slipHeaders = []string{"#", "Date", "From", "To", "Section", "Action", "Days", "Comments"}

var slipWidths = map[string]float64{
	"#":        8,
	"Date":     22,
	"From":     30,
	"To":       30,
	"Section":  26,
	"Action":   22,
	"Days":     12,
	"Comments": 40,
}

// PDFExporter renders routing slips.
type PDFExporter struct {
	title string
}

// NewPDFExporter constructs a PDF exporter. An empty title uses "Routing Slip".
func NewPDFExporter(title string) *PDFExporter {
	if strings.TrimSpace(title) == "" {
		title = "Routing Slip"
	}
	return &PDFExporter{title: title}
}

// RoutingSlip prints the document header and its movement trail, oldest first.
// heldDays is parallel to movements.
func (e *PDFExporter) RoutingSlip(doc *models.Document, movements []models.Movement, heldDays []int, generatedAt time.Time) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("routing slip requires a document")
	}
	if len(heldDays) != len(movements) {
		return nil, fmt.Errorf("held days mismatch: %d movements, %d values", len(movements), len(heldDays))
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(fmt.Sprintf("%s %s", e.title, doc.DocumentNumber), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(e.title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	for _, line := range [][2]string{
		{"Number", doc.DocumentNumber},
		{"Kind", string(doc.Kind)},
		{"Subject", doc.Subject},
		{"Sender", doc.SenderName},
		{"Received", doc.ReceivedDate.Format("2006-01-02")},
		{"Status", string(doc.Status)},
	} {
		pdf.CellFormat(30, 6, line[0]+":", "", 0, "", false, 0, "")
		pdf.CellFormat(0, 6, line[1], "", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	renderTable(pdf, slipDataset(movements, heldDays))

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+generatedAt.UTC().Format(time.RFC3339), "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func slipDataset(movements []models.Movement, heldDays []int) Dataset {
	data := Dataset{Headers: slipHeaders}
	step := 0
	for i := len(movements) - 1; i >= 0; i-- {
		m := movements[i]
		step++
		days := strconv.Itoa(heldDays[i])
		if m.IsCurrent {
			days += "*"
		}
		data.Rows = append(data.Rows, map[string]string{
			"#":        strconv.Itoa(step),
			"Date":     m.ForwardedAt.Format("2006-01-02"),
			"From":     deref(m.FromUserName),
			"To":       orDefault(deref(m.ToUserName), m.ToUserID),
			"Section":  deref(m.ToSectionName),
			"Action":   string(m.Action),
			"Days":     days,
			"Comments": deref(m.Comments),
		})
	}
	return data
}

func renderTable(pdf *gofpdf.Fpdf, data Dataset) {
	pdf.SetFont("Arial", "B", 9)
	for _, header := range data.Headers {
		pdf.CellFormat(slipWidths[header], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			width := slipWidths[header]
			pdf.CellFormat(width, 7, truncate(pdf, row[header], width), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func truncate(pdf *gofpdf.Fpdf, value string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(value) <= limit {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
