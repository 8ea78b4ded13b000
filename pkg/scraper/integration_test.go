package scraper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tiktoksync/pkg/airtable"
	"tiktoksync/pkg/browser"
	"tiktoksync/pkg/config"
	"tiktoksync/pkg/errors"
	"tiktoksync/pkg/logger"
	"tiktoksync/pkg/ui"
)

// mockBackend serves the record store API and the media CDN
type mockBackend struct {
	server      *httptest.Server
	mu          sync.Mutex
	known       []string
	listStatus  int
	created     []map[string]interface{}
	uploads     []string
	cdnRequests int32
	referers    []string
}

func newMockBackend() *mockBackend {
	m := &mockBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v0/appBASE/Videos", m.handleTable)
	mux.HandleFunc("/cdn/v.mp4", m.handleMedia)

	m.server = httptest.NewServer(mux)
	return m
}

func (m *mockBackend) handleTable(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer patTEST" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"AUTHENTICATION_REQUIRED","message":"Authentication required"}}`))
		return
	}

	switch r.Method {
	case http.MethodGet:
		if m.listStatus != 0 {
			w.WriteHeader(m.listStatus)
			return
		}
		var resp airtable.ListResponse
		for i, u := range m.known {
			resp.Records = append(resp.Records, airtable.Record{
				ID:     "rec" + string(rune('A'+i)),
				Fields: airtable.RecordFields{URL: u},
			})
		}
		_ = json.NewEncoder(w).Encode(resp)

	case http.MethodPost:
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(r.FormValue("fields")), &fields); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		m.created = append(m.created, fields)
		m.uploads = append(m.uploads, string(data))
		_, _ = w.Write([]byte(`{"id":"recNEW","fields":{}}`))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (m *mockBackend) handleMedia(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.cdnRequests, 1)
	m.mu.Lock()
	m.referers = append(m.referers, r.Header.Get("Referer"))
	m.mu.Unlock()

	w.Header().Set("Content-Type", "video/mp4")
	_, _ = w.Write([]byte("\x00\x00\x00\x18ftypmp42"))
}

func (m *mockBackend) Close() {
	m.server.Close()
}

func newIntegrationScraper(t *testing.T, backend *mockBackend, apiKey string, driver *fakeDriver) *Scraper {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.TikTok.Username = "user"
	cfg.Airtable.APIURL = backend.server.URL + "/v0"
	cfg.Airtable.BaseID = "appBASE"
	cfg.Airtable.TableName = "Videos"
	cfg.Airtable.APIKey = apiKey
	cfg.Airtable.RequestTimeout = 5 * time.Second
	cfg.Download.Timeout = 5 * time.Second
	cfg.Download.ScratchPath = filepath.Join(t.TempDir(), "latest_tiktok.mp4")

	factory := func() ProfileBrowser {
		return browser.NewSession(func(context.Context) (browser.Driver, error) {
			return driver, nil
		}, cfg.TikTok.BaseURL, logger.NewNopLogger())
	}

	s, err := New(cfg,
		WithSessionFactory(factory),
		WithReporter(ui.NopReporter{}),
		WithLogger(logger.NewNopLogger()),
	)
	require.NoError(t, err)
	return s
}

func integrationDriver(mediaSrc string) *fakeDriver {
	return &fakeDriver{
		pages: map[string]string{
			testProfileURL: profilePage("/@user/video/123"),
			testPostURL: postPage("Hello", mediaSrc,
				`{"props":{"pageProps":{"itemInfo":{"itemStruct":{"createTime":"1700000000"}}}}}`),
		},
		navErr: map[string]error{},
	}
}

func TestIntegration_NewVideoRecorded(t *testing.T) {
	backend := newMockBackend()
	defer backend.Close()
	backend.known = []string{"https://www.tiktok.com/@user/video/99"}

	s := newIntegrationScraper(t, backend, "patTEST", integrationDriver(backend.server.URL+"/cdn/v.mp4"))

	result, err := s.SyncLatestVideo(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Created())

	require.Len(t, backend.created, 1)
	assert.Equal(t, map[string]interface{}{
		"URL":         testPostURL,
		"DatePosted":  "2023-11-14",
		"TimePosted":  "22:13:20",
		"Attachments": testPostURL,
		"Caption":     "Hello",
		"Location":    "N/A",
	}, backend.created[0])
	assert.Equal(t, []string{"\x00\x00\x00\x18ftypmp42"}, backend.uploads)
	assert.Equal(t, []string{"https://www.tiktok.com/"}, backend.referers)
}

func TestIntegration_AlreadyRecorded(t *testing.T) {
	backend := newMockBackend()
	defer backend.Close()
	backend.known = []string{testPostURL}

	s := newIntegrationScraper(t, backend, "patTEST", integrationDriver(backend.server.URL+"/cdn/v.mp4"))

	result, err := s.SyncLatestVideo(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Skipped())
	assert.Empty(t, backend.created)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.cdnRequests))
}

func TestIntegration_BadAPIKey(t *testing.T) {
	backend := newMockBackend()
	defer backend.Close()

	driver := integrationDriver(backend.server.URL + "/cdn/v.mp4")
	s := newIntegrationScraper(t, backend, "wrong", driver)

	_, err := s.SyncLatestVideo(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsType(err, errors.ErrorTypeStoreUnavailable))
	assert.Contains(t, err.Error(), "AUTHENTICATION_REQUIRED")
	assert.Empty(t, driver.visited)
}

func TestIntegration_MediaUnavailable(t *testing.T) {
	backend := newMockBackend()
	defer backend.Close()

	s := newIntegrationScraper(t, backend, "patTEST", integrationDriver(backend.server.URL+"/cdn/missing.mp4"))

	_, err := s.SyncLatestVideo(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsType(err, errors.ErrorTypeDownload))
	assert.Empty(t, backend.created)
}
