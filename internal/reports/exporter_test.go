package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var rows = []AttendeeRow{
	{Username: "alice", FullName: "Alice Liddell", Email: "alice@example.com", RegisteredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
	{Username: "bob", Email: "bob@example.com", RegisteredAt: time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC)},
}

func TestAttendeesExcel(t *testing.T) {
	data, err := NewExporter().AttendeesExcel("Go Meetup", rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Attendees", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Go Meetup", title)

	got, err := f.GetRows("Attendees")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, attendeeHeaders, got[2])
	assert.Equal(t, []string{"alice", "Alice Liddell", "alice@example.com", "2024-03-01 10:00:00"}, got[3])
	assert.Equal(t, "bob", got[4][0])
}

func TestAttendeesCSV(t *testing.T) {
	data, err := NewExporter().AttendeesCSV(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Registered At", records[0][3])
	assert.Equal(t, []string{"bob", "", "bob@example.com", "2024-03-02 11:30:00"}, records[2])
}

func TestAttendeePassIsPDF(t *testing.T) {
	data, err := NewExporter().AttendeePass(Pass{
		EventID:      1,
		EventTitle:   "Go Meetup",
		Category:     "Technology",
		Location:     "Café Central",
		Start:        time.Date(2024, 4, 1, 18, 0, 0, 0, time.UTC),
		Finish:       time.Date(2024, 4, 1, 21, 0, 0, 0, time.UTC),
		Holder:       "Alice Liddell",
		Username:     "alice",
		RegisteredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Code:         "1|1|abc",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
