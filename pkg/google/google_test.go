package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/index"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func services(t *testing.T, h http.Handler) *Services {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := NewServicesWithOptions(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, `{"error":{"code":404,"message":"Not Found"}}`)
}

// fakeCalendar is an in-memory stand-in for the events endpoints of one
// calendar.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]*calendar.Event
	next    int
	inserts int
	patches int
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: make(map[string]*calendar.Event)}
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/users/me/calendarList" {
		writeJSON(w, calendar.CalendarList{Items: []*calendar.CalendarListEntry{
			{Id: "primary-id", Summary: "me@example.com"},
			{Id: "tasks-id", Summary: "Tasks"},
		}})
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/calendars/tasks-id/events")
	if !ok {
		notFound(w)
		return
	}
	id := strings.TrimPrefix(rest, "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		var items []*calendar.Event
		want := r.URL.Query().Get("privateExtendedProperty")
		for _, ev := range f.events {
			for k, v := range ev.ExtendedProperties.Private {
				if k+"="+v == want {
					items = append(items, ev)
				}
			}
		}
		writeJSON(w, calendar.Events{Items: items})
	case id == "" && r.Method == http.MethodPost:
		var ev calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.next++
		f.inserts++
		ev.Id = fmt.Sprintf("ev%d", f.next)
		f.events[ev.Id] = &ev
		writeJSON(w, ev)
	case r.Method == http.MethodGet:
		ev, ok := f.events[id]
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, ev)
	case r.Method == http.MethodPatch:
		ev, ok := f.events[id]
		if !ok {
			notFound(w)
			return
		}
		var patch calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.patches++
		if patch.Summary != "" {
			ev.Summary = patch.Summary
		}
		if patch.Description != "" {
			ev.Description = patch.Description
		}
		if patch.ColorId != "" {
			ev.ColorId = patch.ColorId
		}
		if patch.Start != nil {
			ev.Start, ev.End = patch.Start, patch.End
		}
		writeJSON(w, ev)
	case r.Method == http.MethodDelete:
		if _, ok := f.events[id]; !ok {
			notFound(w)
			return
		}
		delete(f.events, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		notFound(w)
	}
}

func TestFindCalendar(t *testing.T) {
	s := services(t, newFakeCalendar())
	ctx := context.Background()

	id, err := FindCalendar(ctx, s.Calendar, "Tasks")
	require.NoError(t, err)
	assert.Equal(t, "tasks-id", id)

	id, err = FindCalendar(ctx, s.Calendar, "primary")
	require.NoError(t, err)
	assert.Equal(t, "primary", id)

	_, err = FindCalendar(ctx, s.Calendar, "Holidays")
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}

func TestPush(t *testing.T) {
	fake := newFakeCalendar()
	s := services(t, fake)
	ctx := context.Background()

	idx, err := index.NewEventIndex(filepath.Join(t.TempDir(), "events.json"))
	require.NoError(t, err)
	client := NewCalendarClient(s.Calendar, "tasks-id", idx)

	noDue := record(model.Working)
	noDue.Task = "Carton sample"
	noDue.DueDate = model.Date{}
	records := []model.TaskRecord{record(model.Working), noDue}

	stats, err := client.Push(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, PushStats{Created: 1, Skipped: 1}, stats)
	assert.Equal(t, "ev1", idx.Get(RecordKey(records[0])))

	stats, err = client.Push(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, PushStats{Unchanged: 1, Skipped: 1}, stats)

	records[0].Status = model.Delay
	stats, err = client.Push(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, PushStats{Patched: 1, Skipped: 1}, stats)
	assert.Equal(t, "! Mold repair", fake.events["ev1"].Summary)
	assert.Equal(t, "11", fake.events["ev1"].ColorId)

	// a fresh index falls back to the extended property search
	fresh, err := index.NewEventIndex(filepath.Join(t.TempDir(), "events.json"))
	require.NoError(t, err)
	stats, err = NewCalendarClient(s.Calendar, "tasks-id", fresh).Push(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, PushStats{Unchanged: 1, Skipped: 1}, stats)
	assert.Equal(t, "ev1", fresh.Get(RecordKey(records[0])))
	assert.Equal(t, 1, fake.inserts)

	// an event deleted behind the index is recreated
	require.NoError(t, client.DeleteEvent(ctx, "ev1"))
	stats, err = client.Push(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, PushStats{Created: 1, Skipped: 1}, stats)
	assert.Equal(t, "ev2", idx.Get(RecordKey(records[0])))
}

func TestPrune(t *testing.T) {
	fake := newFakeCalendar()
	s := services(t, fake)
	ctx := context.Background()

	idx, err := index.NewEventIndex(filepath.Join(t.TempDir(), "events.json"))
	require.NoError(t, err)
	client := NewCalendarClient(s.Calendar, "tasks-id", idx)

	kept := record(model.Working)
	renamed := record(model.Working)
	renamed.Task = "Carton sample"
	removed := record(model.Delay)
	removed.Task = "Old handle"
	_, err = client.Push(ctx, []model.TaskRecord{kept, renamed, removed})
	require.NoError(t, err)
	require.Len(t, fake.events, 3)

	// the event of "Old handle" was already deleted by hand
	require.NoError(t, client.DeleteEvent(ctx, idx.Get(RecordKey(removed))))

	renamed.Task = "Carton sample v2"
	records := []model.TaskRecord{kept, renamed}
	stats, err := client.Push(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, PushStats{Created: 1, Unchanged: 1}, stats)

	deleted, err := client.Prune(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Len(t, fake.events, 2)
	assert.Equal(t, 2, idx.Len())
	assert.NotEmpty(t, idx.Get(RecordKey(kept)))
	assert.NotEmpty(t, idx.Get(RecordKey(renamed)))

	deleted, err = client.Prune(ctx, records)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	n, err := NewCalendarClient(s.Calendar, "tasks-id", nil).Prune(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPushStopsOnCancel(t *testing.T) {
	s := services(t, newFakeCalendar())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCalendarClient(s.Calendar, "tasks-id", nil).Push(ctx, []model.TaskRecord{record(model.Working)})
	assert.ErrorIs(t, err, context.Canceled)
}

func taskWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"TASK", "Requester", "START DATE", "DUE DATE", "CONFIRM FROM BARON", "PICTURE"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Mold repair", "Lan", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2024-02-01", "go"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDriveDownload(t *testing.T) {
	data := taskWorkbook(t)
	var exported, downloaded int
	mux := http.NewServeMux()
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/files/")
		id, action, _ := strings.Cut(rest, "/")
		switch {
		case action == "export":
			assert.Equal(t, xlsxMime, r.URL.Query().Get("mimeType"))
			exported++
			_, _ = w.Write(data)
		case r.URL.Query().Get("alt") == "media":
			downloaded++
			_, _ = w.Write(data)
		case id == "native":
			writeJSON(w, map[string]string{"id": id, "name": "Baron tasks", "mimeType": googleSheetMime})
		case id == "upload":
			writeJSON(w, map[string]string{"id": id, "name": "tasks.xlsx", "mimeType": xlsxMime})
		default:
			notFound(w)
		}
	})
	s := services(t, mux)
	client := NewDriveClient(s.Drive)
	ctx := context.Background()

	name, got, err := client.Download(ctx, "native")
	require.NoError(t, err)
	assert.Equal(t, "Baron tasks.xlsx", name)
	assert.Equal(t, data, got)
	assert.Equal(t, 1, exported)

	name, _, err = client.Download(ctx, "upload")
	require.NoError(t, err)
	assert.Equal(t, "tasks.xlsx", name)
	assert.Equal(t, 1, downloaded)

	_, _, err = client.Download(ctx, "missing")
	assert.Error(t, err)

	src := DriveSource{Client: client, FileID: "upload"}
	assert.Equal(t, "drive:upload", src.Name())
	records, err := src.Records(ctx, extract.Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Mold repair", records[0].Task)
	assert.Equal(t, model.NewDate(2024, 1, 15), records[0].StartDate)
}

func TestSheetsGrid(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/spreadsheets/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/values/") {
			writeJSON(w, map[string]any{"sheets": []any{map[string]any{"properties": map[string]any{"title": "Tasks"}}}})
			return
		}
		assert.True(t, strings.HasSuffix(r.URL.Path, "/values/Tasks"))
		assert.Equal(t, "UNFORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))
		assert.Equal(t, "SERIAL_NUMBER", r.URL.Query().Get("dateTimeRenderOption"))
		writeJSON(w, map[string]any{
			"range": "Tasks!A1:F4",
			"values": []any{
				[]any{"NEW GO PLASTIC"},
				[]any{},
				[]any{"TASK", "Requester", "START DATE", "DUE DATE", "CONFIRM FROM BARON", "PICTURE"},
				[]any{"Mold repair", "Lan", 45306, 45323.5, true},
			},
		})
	})
	s := services(t, mux)
	client := NewSheetsClient(s.Sheets)

	grid, err := client.Grid(context.Background(), "sheet-id", "")
	require.NoError(t, err)
	require.Len(t, grid.Rows, 4)
	assert.Equal(t, []string{"Mold repair", "Lan", "45306", "45323.5", "TRUE"}, grid.Rows[3])
	assert.Empty(t, grid.Pictures)

	records, err := SheetsSource{Client: client, SpreadsheetID: "sheet-id"}.Records(context.Background(), extract.Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.NewDate(2024, 1, 15), records[0].StartDate)
	assert.Equal(t, model.NewDate(2024, 2, 1), records[0].DueDate)
}
