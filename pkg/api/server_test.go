package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func loadChart(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "converter", "testdata", "minimal.chart"))
	require.NoError(t, err)
	return data
}

// farNoteChart is a tiny chart whose single late note would need ~1e12 rows
func farNoteChart() []byte {
	var b strings.Builder
	b.WriteString("[Song]\n{\n  Resolution = 192\n}\n")
	for _, d := range []string{"ExpertSingle", "HardSingle", "MediumSingle", "EasySingle"} {
		b.WriteString("[" + d + "]\n{\n  4000000000000 = N 0 0\n}\n")
	}
	return []byte(b.String())
}

func uploadRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"chart2ssc"`)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := serve(req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestListFormatsAndProfiles(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chart -> ssc")

	rec = serve(httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"pump-single"`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/convert/chart2ssc", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestChartToSSC(t *testing.T) {
	rec := serve(uploadRequest(t, "/api/v1/convert/chart2ssc", "soulless.chart", loadChart(t)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "attachment; filename=soulless.ssc", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "#VERSION:0.83;"))
	assert.Contains(t, rec.Body.String(), "#BPMS:0.000=120.000;")
	assert.Contains(t, rec.Body.String(), "#STEPSTYPE:pump-single;")
}

func TestChartToMIDI(t *testing.T) {
	rec := serve(uploadRequest(t, "/api/v1/convert/chart2midi", "soulless.chart", loadChart(t)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "audio/midi", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("MThd")))
}

func TestConversionErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
	}{
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/convert/chart2ssc", nil)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unsupported resolution",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/convert/chart2ssc", "a.chart", []byte("[Song]\n{\n Resolution = 96\n}\n"))
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "empty difficulty",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/convert/chart2ssc", "a.chart", []byte("[Song]\n{\n Resolution = 192\n}\n"))
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "grid too large",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/convert/chart2ssc", "a.chart", farNoteChart())
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "midi grid too large",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/convert/chart2midi", "a.chart", farNoteChart())
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "profile path refused",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/convert/chart2ssc?profile=/etc/passwd", "a.chart", loadChart(t))
			},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.req(t))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestInspect(t *testing.T) {
	rec := serve(uploadRequest(t, "/api/v1/inspect", "soulless.chart", loadChart(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary struct {
		Bpms   string `json:"bpms"`
		Tracks []struct {
			Difficulty string `json:"difficulty"`
			Notes      int    `json:"notes"`
		} `json:"tracks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "0.000=120.000", summary.Bpms)
	require.Len(t, summary.Tracks, 4)
	assert.Equal(t, "HardSingle", summary.Tracks[1].Difficulty)
	assert.Equal(t, 3, summary.Tracks[1].Notes)
}

func TestInspectFarNote(t *testing.T) {
	rec := serve(uploadRequest(t, "/api/v1/inspect", "far.chart", farNoteChart()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary struct {
		Tracks []struct {
			LastTick int `json:"last_tick"`
			Grid     struct {
				Rows int `json:"rows"`
				Taps int `json:"taps"`
			} `json:"grid"`
		} `json:"tracks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary.Tracks, 4)
	assert.Equal(t, 1000000000000, summary.Tracks[0].LastTick)
	assert.Equal(t, 1000000000001, summary.Tracks[0].Grid.Rows)
	assert.Equal(t, 1, summary.Tracks[0].Grid.Taps)
}
