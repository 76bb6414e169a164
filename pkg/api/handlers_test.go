package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/osubuf/pkg/codec"
	"github.com/ssargent/osubuf/pkg/layout"
	"github.com/ssargent/osubuf/pkg/storage"
)

const testAPIKey = "test-key"

var pointLayout = layout.Layout{
	Name: "point",
	Fields: []layout.Field{
		{Name: "x", Type: layout.TypeInt16},
		{Name: "y", Type: layout.TypeInt16},
		{Name: "label", Type: layout.TypeString},
		{Name: "at", Type: layout.TypeDateTime},
	},
}

var pointTime = time.Date(2014, 3, 15, 18, 30, 0, 0, time.UTC)

func encodePoint(t *testing.T, x, y int16, label string) []byte {
	t.Helper()
	w := codec.NewWriter()
	require.NoError(t, w.WriteInt16(x))
	require.NoError(t, w.WriteInt16(y))
	require.NoError(t, w.WriteString(label, false))
	require.NoError(t, w.WriteDateTime(pointTime))
	return w.Bytes()
}

func setupTestServer(t *testing.T, cfg ServerConfig) (http.Handler, *storage.Archive) {
	t.Helper()

	archive, err := storage.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	reg, err := layout.DefaultRegistry(pointLayout)
	require.NoError(t, err)

	server := NewServer(archive, reg, cfg, NewMetrics(), nil)
	return server.Router(), archive
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) APIResponse {
	t.Helper()
	resp := APIResponse{Data: data}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp), "body: %s", w.Body.String())
	return resp
}

func TestServer_Health(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})

	w := do(t, h, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var data map[string]string
	resp := decodeEnvelope(t, w, &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", data["status"])
}

func TestServer_RequiresAPIKey(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})

	req := httptest.NewRequest("GET", "/api/v1/layouts", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// metrics stay open for scraping
	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Layouts(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})

	w := do(t, h, "GET", "/api/v1/layouts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var layouts []layout.Layout
	decodeEnvelope(t, w, &layouts)

	var names []string
	for _, l := range layouts {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"osr-header", "point", "score-entry"}, names)
}

func TestServer_Decode(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})
	payload := encodePoint(t, 3, -4, "circle")

	w := do(t, h, "POST", "/api/v1/decode/point", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Layout    string `json:"layout"`
		Consumed  int    `json:"consumed"`
		Remaining int    `json:"remaining"`
		Records   []struct {
			Values []struct {
				Name  string          `json:"name"`
				Value json.RawMessage `json:"value"`
			} `json:"values"`
		} `json:"records"`
	}
	decodeEnvelope(t, w, &resp)

	assert.Equal(t, "point", resp.Layout)
	assert.Equal(t, len(payload), resp.Consumed)
	assert.Equal(t, 0, resp.Remaining)
	require.Len(t, resp.Records, 1)
	vals := resp.Records[0].Values
	require.Len(t, vals, 4)
	assert.JSONEq(t, `3`, string(vals[0].Value))
	assert.JSONEq(t, `-4`, string(vals[1].Value))
	assert.JSONEq(t, `"circle"`, string(vals[2].Value))
	assert.JSONEq(t, `"2014-03-15T18:30:00Z"`, string(vals[3].Value))
}

func TestServer_DecodeAll(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})
	payload := append(encodePoint(t, 1, 1, "a"), encodePoint(t, 2, 2, "b")...)

	w := do(t, h, "POST", "/api/v1/decode/point?all=true", payload)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DecodeResponse
	decodeEnvelope(t, w, &resp)
	assert.Len(t, resp.Records, 2)
	assert.Equal(t, len(payload), resp.Consumed)

	w = do(t, h, "POST", "/api/v1/decode/point", payload)
	require.Equal(t, http.StatusOK, w.Code)
	resp = DecodeResponse{}
	decodeEnvelope(t, w, &resp)
	assert.Len(t, resp.Records, 1)
	assert.Equal(t, len(payload)/2, resp.Remaining)
}

func TestServer_DecodeErrors(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey, MaxBodySize: 64})
	payload := encodePoint(t, 1, 2, "label")

	testCases := []struct {
		name   string
		path   string
		body   []byte
		status int
	}{
		{"unknown layout", "/api/v1/decode/nope", payload, http.StatusNotFound},
		{"truncated", "/api/v1/decode/point", payload[:len(payload)-1], http.StatusUnprocessableEntity},
		{"empty body", "/api/v1/decode/point", nil, http.StatusUnprocessableEntity},
		{"too large", "/api/v1/decode/point", bytes.Repeat([]byte{0}, 65), http.StatusRequestEntityTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, "POST", tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			resp := decodeEnvelope(t, w, nil)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestServer_Encode(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})
	body := []byte(`{"x": 3, "y": -4, "label": "circle", "at": "2014-03-15T18:30:00Z"}`)

	w := do(t, h, "POST", "/api/v1/encode/point", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, encodePoint(t, 3, -4, "circle"), w.Body.Bytes())
}

func TestServer_EncodeNullableStrings(t *testing.T) {
	body := []byte(`{"x": 0, "y": 0, "label": "", "at": "2014-03-15T18:30:00Z"}`)

	strict, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})
	w := do(t, strict, "POST", "/api/v1/encode/point", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte{codec.TagPresent, 0x00}, w.Body.Bytes()[4:6])

	nullable, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey, NullableStrings: true})
	w = do(t, nullable, "POST", "/api/v1/encode/point", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, codec.TagAbsent, w.Body.Bytes()[4])
	assert.Equal(t, 4+1+8, w.Body.Len())
}

func TestServer_EncodeErrors(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey, MaxBodySize: 1024})

	testCases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"invalid json", "/api/v1/encode/point", `{`, http.StatusBadRequest},
		{"missing field", "/api/v1/encode/point", `{"x": 1}`, http.StatusBadRequest},
		{"out of range", "/api/v1/encode/point", `{"x": 40000, "y": 0, "label": "a", "at": "2014-03-15T18:30:00Z"}`, http.StatusBadRequest},
		{"unrepresentable", "/api/v1/encode/point", `{"x": 1, "y": 0, "label": "日本", "at": "2014-03-15T18:30:00Z"}`, http.StatusBadRequest},
		{"unknown layout", "/api/v1/encode/nope", `{}`, http.StatusNotFound},
		{"body too large", "/api/v1/encode/point", `{"x": 1, "y": 0, "label": "` + strings.Repeat("a", 1000) + `", "at": "2014-03-15T18:30:00Z"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, "POST", tc.path, []byte(tc.body))
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestServer_ArchiveLifecycle(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})
	payload := encodePoint(t, 7, 8, "stored")

	// put
	w := do(t, h, "POST", "/api/v1/archive/point", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created ArchiveEntryResponse
	decodeEnvelope(t, w, &created)
	assert.Equal(t, "point", created.Layout)
	assert.Equal(t, len(payload), created.Size)
	require.NotEmpty(t, created.ID)

	// list
	w = do(t, h, "GET", "/api/v1/archive?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []ArchiveEntryResponse
	decodeEnvelope(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// raw
	w = do(t, h, "GET", "/api/v1/archive/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	raw, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)
	assert.Equal(t, "point", w.Header().Get("X-Osubuf-Layout"))

	// decoded
	w = do(t, h, "GET", "/api/v1/archive/"+created.ID+"/decoded", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var decoded ArchiveDecodedResponse
	decodeEnvelope(t, w, &decoded)
	assert.Equal(t, created.ID, decoded.ID)
	require.Len(t, decoded.Records, 1)
	assert.Len(t, decoded.Records[0].Values, 4)

	// delete
	w = do(t, h, "DELETE", "/api/v1/archive/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/api/v1/archive/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "DELETE", "/api/v1/archive/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ArchiveErrors(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})

	w := do(t, h, "POST", "/api/v1/archive/point", []byte{0x01})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, "POST", "/api/v1/archive/nope", []byte{0x01})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "GET", "/api/v1/archive/not-a-ksuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/api/v1/archive?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/api/v1/archive", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []ArchiveEntryResponse
	decodeEnvelope(t, w, &listed)
	assert.Empty(t, listed)
}

func TestServer_EncodeBlobFromBase64(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})

	// osr-header carries a blob; build one through the API and decode it back
	values := map[string]any{
		"mode": 0, "version": 20140315,
		"beatmap_md5": "d41d8cd98f00b204e9800998ecf8427e", "player": "peppy", "replay_md5": nil,
		"count_300": 1, "count_100": 0, "count_50": 0, "count_geki": 0, "count_katu": 0, "count_miss": 0,
		"score": 300, "max_combo": 1, "perfect": true, "mods": 0,
		"life_bar":        "",
		"timestamp":       "2014-03-15T18:30:00Z",
		"replay_data":     base64.StdEncoding.EncodeToString([]byte{0x5d, 0x00}),
		"online_score_id": 42,
	}
	body, err := json.Marshal(values)
	require.NoError(t, err)

	w := do(t, h, "POST", "/api/v1/encode/osr-header", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	encoded := w.Body.Bytes()

	w = do(t, h, "POST", "/api/v1/decode/osr-header", encoded)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"peppy"`)
	assert.Contains(t, w.Body.String(), base64.StdEncoding.EncodeToString([]byte{0x5d, 0x00}))
}

func TestServer_Swagger(t *testing.T) {
	h, _ := setupTestServer(t, ServerConfig{APIKey: testAPIKey})

	req := httptest.NewRequest("GET", "/swagger/doc.json", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Contains(t, doc["paths"], "/decode/{layout}")

	req = httptest.NewRequest("GET", "/swagger/index.html", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
