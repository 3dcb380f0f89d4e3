package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/entrhq/guestlist/pkg/capture"
)

func ptr(s string) *string { return &s }

func sampleAttendees() []capture.Attendee {
	return []capture.Attendee{
		{
			Name:                 "Ann",
			ProfileLink:          "https://lu.ma/user/u1",
			EventName:            "Demo Night",
			EventLink:            "https://lu.ma/demo",
			Timezone:             "Unknown",
			Twitter:              ptr("https://twitter.com/ann"),
			NumTicketsRegistered: 1,
		},
		{
			Name:        "Bo",
			ProfileLink: "https://lu.ma/user/u2",
			EventName:   "Demo Night",
			EventLink:   "https://lu.ma/demo",
			Timezone:    "Europe/Berlin",
			Website:     ptr("https://bo.dev"),
		},
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		prefix, event, ext string
		want               string
	}{
		{AttendeesPrefix, "Demo Night", "xlsx", "attendees_demo_night.xlsx"},
		{AttendeesPrefix, "AI/ML Meetup #3!", "json", "attendees_ai_ml_meetup__3_.json"},
		{RawPrefix, "Café", "json", "guestlist_raw_caf_.json"},
		{AttendeesPrefix, "Tōkyō 東京 Night", "xlsx", "attendees_t_ky_____night.xlsx"},
		{AttendeesPrefix, "", "xlsx", "attendees_.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.prefix, tt.event, tt.ext))
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	dir := t.TempDir()
	exp := New(Options{OutputDir: filepath.Join(dir, "out")})

	path, err := exp.WriteXLSX(sampleAttendees(), "Demo Night")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "attendees_demo_night.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])

	assert.Equal(t, "Ann", rows[1][0])
	assert.Equal(t, "https://twitter.com/ann", rows[1][9])
	assert.Equal(t, "", rows[1][10], "absent instagram is a blank cell")
	assert.Equal(t, "1", rows[1][15])

	assert.Equal(t, "Bo", rows[2][0])
	assert.Equal(t, "", rows[2][9])
	assert.Equal(t, "https://bo.dev", rows[2][14])
}

func TestWriteXLSX_Empty(t *testing.T) {
	exp := New(Options{OutputDir: t.TempDir()})

	path, err := exp.WriteXLSX(nil, "Quiet Event")
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestWriteJSON(t *testing.T) {
	exp := New(Options{OutputDir: t.TempDir()})

	path, err := exp.WriteJSON(sampleAttendees(), "Demo Night")
	require.NoError(t, err)
	assert.Equal(t, "attendees_demo_night.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, "https://twitter.com/ann", records[0]["twitter"])
	assert.NotContains(t, records[0], "instagram", "absent fields are omitted")
	assert.NotContains(t, records[1], "twitter")
	assert.Equal(t, "", records[1]["username"], "defaulted fields are always present")

	path, err = exp.WriteJSON(nil, "Nobody")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestWriteRaw(t *testing.T) {
	exp := New(Options{OutputDir: t.TempDir()})

	path, err := exp.WriteRaw([]byte(`{"entries":[{"name":"Ann"}]}`), "Demo Night")
	require.NoError(t, err)
	assert.Equal(t, "guestlist_raw_demo_night.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"entries\"")

	path, err = exp.WriteRaw([]byte("not json"), "Broken")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not json", string(data))
}

func TestWriteAll(t *testing.T) {
	res := capture.Result{
		Attendees: sampleAttendees(),
		EventName: "Demo Night",
		Raw:       []byte(`{"entries":[]}`),
	}

	t.Run("raw only when enabled", func(t *testing.T) {
		exp := New(Options{OutputDir: t.TempDir(), XLSX: true, JSON: true})
		paths, err := exp.WriteAll(res)
		require.NoError(t, err)
		require.Len(t, paths, 2)
		assert.Equal(t, "attendees_demo_night.xlsx", filepath.Base(paths[0]))
		assert.Equal(t, "attendees_demo_night.json", filepath.Base(paths[1]))
	})

	t.Run("everything", func(t *testing.T) {
		exp := New(Options{OutputDir: t.TempDir(), XLSX: true, JSON: true, Raw: true})
		paths, err := exp.WriteAll(res)
		require.NoError(t, err)
		require.Len(t, paths, 3)
		assert.Equal(t, "guestlist_raw_demo_night.json", filepath.Base(paths[2]))
	})
}

func TestPreview(t *testing.T) {
	old := PreviewFormatter
	PreviewFormatter = "noop"
	t.Cleanup(func() { PreviewFormatter = old })

	var buf bytes.Buffer
	require.NoError(t, Preview(&buf, sampleAttendees(), 1))

	var shown []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &shown))
	require.Len(t, shown, 1)
	assert.Equal(t, "Ann", shown[0]["name"])

	buf.Reset()
	require.NoError(t, Preview(&buf, sampleAttendees(), 10))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &shown))
	assert.Len(t, shown, 2)

	buf.Reset()
	require.NoError(t, Preview(&buf, sampleAttendees(), 0))
	assert.Zero(t, buf.Len())
}
