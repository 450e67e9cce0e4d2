package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/baronboard/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var now = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := map[string][]any{
		"A1": {"NEW GO PLASTIC WANEK 6"},
		"A3": {"TASK", "Requester", "START DATE", "DUE DATE", "CONFIRM FROM BARON", "PICTURE"},
		"A4": {"Mold repair", "Lan", "2024-01-15", "2024-02-01", "GO"},
		"A5": {"Carton sample", "An", "2024-01-10", "2024-03-01", ""},
		"A6": {"New handle", "Lan", "2024-07-01", "2024-07-20", ""},
	}
	for cell, row := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *http.Client) {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return now }
	}
	s, err := New(opts)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar
	return ts, client
}

func upload(t *testing.T, client *http.Client, url, filename string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := client.Post(url+"/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp, readBody(t, resp)
}

func TestHealth(t *testing.T) {
	ts, client := newTestServer(t, Options{})
	resp, body := get(t, client, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestIndexWithoutUpload(t *testing.T) {
	ts, client := newTestServer(t, Options{})
	resp, body := get(t, client, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Upload a spreadsheet to start")
	assert.NotContains(t, body, `id="totalTasks"`)

	resp, _ = get(t, client, ts.URL+"/export.csv")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadThenDashboard(t *testing.T) {
	ts, client := newTestServer(t, Options{})

	resp := upload(t, client, ts.URL, "tasks.xlsx", workbook(t))
	// the redirect to / is followed
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `id="totalTasks">3<`)
	assert.Contains(t, body, `id="completed">1<`)
	assert.Contains(t, body, `id="delayed">1<`)
	assert.Contains(t, body, `id="withImages">0<`)
	assert.Contains(t, body, "Mold repair")
	assert.Contains(t, body, "Reference date: 06/15/2024")

	resp, body = get(t, client, ts.URL+"/?status=Delay")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="totalTasks">1<`)
	assert.Contains(t, body, "Carton sample")
	assert.NotContains(t, body, "Mold repair")
	assert.Contains(t, body, `/export.csv?status=Delay`)

	resp, body = get(t, client, ts.URL+"/?q=HANDLE&requester=Lan")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="totalTasks">1<`)
	assert.Contains(t, body, "New handle")
}

func TestExportFilteredCSV(t *testing.T) {
	ts, client := newTestServer(t, Options{})
	upload(t, client, ts.URL, "tasks.xlsx", workbook(t))

	resp, body := get(t, client, ts.URL+"/export.csv?status=Delay")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "tasks_20240615_143000.csv")

	require.True(t, strings.HasPrefix(body, "\ufeff"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\ufeff")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "TASK,Requester,START DATE,DUE DATE,CONFIRM FROM BARON,STATUS", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Carton sample,An,01/10/2024,03/01/2024,,Delay")
}

func TestBadUploadIsUnprocessable(t *testing.T) {
	ts, client := newTestServer(t, Options{})
	resp := upload(t, client, ts.URL, "notes.xlsx", []byte("not a workbook"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "could not be read")
	assert.NotContains(t, body, `id="totalTasks"`)

	// a rejected upload does not start a session
	_, body = get(t, client, ts.URL+"/")
	assert.Contains(t, body, "Upload a spreadsheet to start")
}

func TestHeaderNotFoundIsUnprocessable(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "something else"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ts, client := newTestServer(t, Options{Printer: i18n.New("vi")})
	resp := upload(t, client, ts.URL, "tasks.xlsx", buf.Bytes())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Không tìm thấy dòng tiêu đề")
}

func TestLastUploadWins(t *testing.T) {
	ts, client := newTestServer(t, Options{})
	upload(t, client, ts.URL, "tasks.xlsx", workbook(t))

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"TASK", "Requester"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Only task", "Binh"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	resp := upload(t, client, ts.URL, "second.xlsx", buf.Bytes())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `id="totalTasks">1<`)
	assert.Contains(t, body, "Only task")
	assert.NotContains(t, body, "Mold repair")
}

func TestUploadErrors(t *testing.T) {
	ts, client := newTestServer(t, Options{MaxUploadBytes: 1024})

	resp := upload(t, client, ts.URL, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = upload(t, client, ts.URL, "big.xlsx", bytes.Repeat([]byte("x"), 4096))
	assert.GreaterOrEqual(t, resp.StatusCode, 400)
	assert.NotContains(t, readBody(t, resp), `id="totalTasks"`)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
