package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"
)

// AttendeeRow is one line of an attendee export.
type AttendeeRow struct {
	Username     string
	FullName     string
	Email        string
	RegisteredAt time.Time
}

// Pass is the printable admission document of one attendee.
type Pass struct {
	EventID      uint
	EventTitle   string
	Category     string
	Location     string
	Address      string
	Start        time.Time
	Finish       time.Time
	Holder       string
	Username     string
	RegisteredAt time.Time
	// Code is encoded in the QR image and checked at the door.
	Code string
}

// Exporter renders attendee lists and passes.
type Exporter interface {
	AttendeesExcel(eventTitle string, rows []AttendeeRow) ([]byte, error)
	AttendeesCSV(rows []AttendeeRow) ([]byte, error)
	AttendeePass(p Pass) ([]byte, error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

var attendeeHeaders = []string{"Username", "Full Name", "Email", "Registered At"}

func (e *exporter) AttendeesExcel(eventTitle string, rows []AttendeeRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attendees"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	f.SetCellValue(sheetName, "A1", eventTitle)
	for i, header := range attendeeHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 4
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Username)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.FullName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.RegisteredAt.Format("2006-01-02 15:04:05"))
	}
	f.SetColWidth(sheetName, "A", "D", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) AttendeesCSV(rows []AttendeeRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(attendeeHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{r.Username, r.FullName, r.Email, r.RegisteredAt.Format("2006-01-02 15:04:05")}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) AttendeePass(p Pass) ([]byte, error) {
	qrPNG, err := qrcode.Encode(p.Code, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(p.EventTitle))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Attendee: " + p.Holder + " (@" + p.Username + ")",
		"Category: " + p.Category,
		"Starts: " + p.Start.Format("Mon 02 Jan 2006 15:04"),
		"Ends: " + p.Finish.Format("Mon 02 Jan 2006 15:04"),
	}
	if p.Location != "" {
		lines = append(lines, "Location: "+p.Location)
	}
	if p.Address != "" {
		lines = append(lines, "Address: "+p.Address)
	}
	lines = append(lines, "Registered: "+p.RegisteredAt.Format("2006-01-02 15:04"))
	for _, l := range lines {
		pdf.Cell(0, 8, tr(l))
		pdf.Ln(8)
	}

	// Add QR image
	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, imageOpts, 0, "")

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 6, "Pass code: "+p.Code)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
