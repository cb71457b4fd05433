package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-poster-kit/pkg/config"
	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/publisher"
	"github.com/shouni/go-poster-kit/pkg/runner"
	"github.com/shouni/go-poster-kit/pkg/slicer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	result  *domain.CompositeResult
	err     error
	waitCtx bool
	got     domain.PosterRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req domain.PosterRequest) (*domain.CompositeResult, error) {
	f.got = req
	if f.waitCtx {
		<-ctx.Done()
		return nil, &domain.ServiceError{Model: "fake", Err: ctx.Err()}
	}
	return f.result, f.err
}

type busyRunner struct{}

func (busyRunner) Run(_ context.Context, s domain.Session) (domain.Session, error) {
	return s, domain.ErrGenerationInFlight
}

func (busyRunner) FileNames(domain.Session) []string { return nil }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newTestHandler(t *testing.T, gen *fakeGenerator, timeout time.Duration) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RequestTimeout = timeout
	r := runner.NewPosterRunner(cfg, gen, slicer.NewPanelSlicer(), publisher.NewPanelPublisher(publisher.NewLocalWriter(), ""))

	h, err := NewHandler(r)
	require.NoError(t, err)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

// multipartRequest は boards に含まれるフィールドだけを添付したフォームを作成します。
func multipartRequest(t *testing.T, boards []string, withStyle bool, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	img := pngBytes(t, 2, 2)
	for _, name := range boards {
		fw, err := mw.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = fw.Write(img)
		require.NoError(t, err)
	}
	if withStyle {
		fw, err := mw.CreateFormFile("style", "style.png")
		require.NoError(t, err)
		_, err = fw.Write(img)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, PostersPath, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var allBoards = []string{"board1", "board2", "board3", "board4"}

var validFields = map[string]string{
	"student":    "Noura",
	"instructor": "Dr. Khan",
	"project":    "Green Atrium",
}

func TestHandler_Posters(t *testing.T) {
	t.Run("4枚のポスターをbase64で返す", func(t *testing.T) {
		gen := &fakeGenerator{result: &domain.CompositeResult{Data: pngBytes(t, 1603, 30), MimeType: "image/png"}}
		h := newTestHandler(t, gen, time.Minute)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, allBoards, true, validFields))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp postersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Green Atrium", resp.Project)
		require.Len(t, resp.Panels, 4)
		assert.Equal(t, "A0-Poster-Green_Atrium-1.png", resp.Panels[0].FileName)
		assert.Equal(t, 401, resp.Panels[3].Width)

		data, err := base64.StdEncoding.DecodeString(resp.Panels[2].Data)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 401, cfg.Width)
		assert.Equal(t, 30, cfg.Height)

		assert.NotNil(t, gen.got.StyleReference)
		assert.Equal(t, "board1.png", gen.got.Boards[0].DisplayName)
		assert.Equal(t, "board4.png", gen.got.Boards[3].DisplayName)
	})

	t.Run("ボードが欠けていれば400で不足を列挙する", func(t *testing.T) {
		gen := &fakeGenerator{}
		h := newTestHandler(t, gen, time.Minute)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, []string{"board1", "board2", "board4"}, false, validFields))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Problems, "board 3 is missing")
		assert.Empty(t, gen.got.Boards, "サービスは呼ばれない")
	})

	t.Run("メタデータが空白のみなら400", func(t *testing.T) {
		h := newTestHandler(t, &fakeGenerator{}, time.Minute)
		fields := map[string]string{"student": "Noura", "instructor": "  ", "project": "Oasis"}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, allBoards, false, fields))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "instructor name is required")
	})

	t.Run("画像のない応答は502", func(t *testing.T) {
		h := newTestHandler(t, &fakeGenerator{err: domain.ErrNoResult}, time.Minute)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, allBoards, false, validFields))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("タイムアウトは504", func(t *testing.T) {
		h := newTestHandler(t, &fakeGenerator{waitCtx: true}, 20*time.Millisecond)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, allBoards, false, validFields))
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})

	t.Run("実行中は409", func(t *testing.T) {
		h, err := NewHandler(busyRunner{})
		require.NoError(t, err)
		mux := http.NewServeMux()
		h.Register(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, multipartRequest(t, allBoards, false, validFields))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("multipartでなければ400", func(t *testing.T) {
		h := newTestHandler(t, &fakeGenerator{}, time.Minute)
		req := httptest.NewRequest(http.MethodPost, PostersPath, strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Healthz(t *testing.T) {
	h := newTestHandler(t, &fakeGenerator{}, time.Minute)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthzPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"検証", &domain.ValidationError{Problems: []string{"x"}}, http.StatusBadRequest},
		{"実行中", domain.ErrGenerationInFlight, http.StatusConflict},
		{"タイムアウト", &domain.ServiceError{Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"サービス", &domain.ServiceError{Err: assert.AnError}, http.StatusBadGateway},
		{"デコード", &domain.DecodeError{Err: assert.AnError}, http.StatusBadGateway},
		{"結果なし", domain.ErrNoResult, http.StatusBadGateway},
		{"不明", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
