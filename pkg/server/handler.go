package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/shouni/go-poster-kit/pkg/asset"
	"github.com/shouni/go-poster-kit/pkg/domain"
)

const (
	PostersPath = "/api/posters"
	HealthzPath = "/healthz"

	// DefaultMaxUploadBytes は1リクエストで受け付けるアップロードの上限です。
	DefaultMaxUploadBytes = 64 << 20
	// maxMemoryBytes を超えたフォームデータは一時ファイルに退避されます。
	maxMemoryBytes = 32 << 20
)

var boardFields = [domain.BoardCount]string{"board1", "board2", "board3", "board4"}

// PosterRunner はハンドラーが利用する Runner の機能です。workflow.PosterRunner はこれを満たします。
type PosterRunner interface {
	Run(ctx context.Context, session domain.Session) (domain.Session, error)
	FileNames(session domain.Session) []string
}

type Handler struct {
	runner         PosterRunner
	maxUploadBytes int64
}

type panelResponse struct {
	Index    int    `json:"index"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     string `json:"data"`
}

type postersResponse struct {
	Project string          `json:"project"`
	Panels  []panelResponse `json:"panels"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
	Code     int      `json:"code"`
}

func NewHandler(runner PosterRunner) (*Handler, error) {
	if runner == nil {
		return nil, errors.New("runner は必須です")
	}
	return &Handler{runner: runner, maxUploadBytes: DefaultMaxUploadBytes}, nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+HealthzPath, h.healthzHandler)
	mux.HandleFunc("POST "+PostersPath, h.postersHandler)
}

func (h *Handler) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) postersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("フォームの解析に失敗しました: %v", err), nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	session, err := sessionFromForm(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	session, err = h.runner.Run(ctx, session)
	if err != nil {
		status := statusFor(err)
		var vErr *domain.ValidationError
		var problems []string
		if errors.As(err, &vErr) {
			problems = vErr.Problems
		}
		slog.WarnContext(ctx, "ポスター生成リクエストが失敗しました", "status", status, "error", err)
		writeJSONError(w, status, err.Error(), problems)
		return
	}

	names := h.runner.FileNames(session)
	panels := session.Panels()
	resp := postersResponse{
		Project: session.Metadata().Trimmed().ProjectName,
		Panels:  make([]panelResponse, len(panels)),
	}
	for i, p := range panels {
		resp.Panels[i] = panelResponse{
			Index:    p.Index,
			FileName: names[i],
			MimeType: p.MimeType,
			Width:    p.Width,
			Height:   p.Height,
			Data:     base64.StdEncoding.EncodeToString(p.Data),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// sessionFromForm はフォームの各スロットを読み込んでセッションを組み立てます。
// 欠けているボードはそのまま空きスロットとなり、検証時に報告されます。
func sessionFromForm(r *http.Request) (domain.Session, error) {
	s := domain.NewSession()

	for i, field := range boardFields {
		a, ok, err := readAsset(r, field, int64(i))
		if err != nil {
			return s, err
		}
		if !ok {
			continue
		}
		if s, err = s.WithBoard(i, a); err != nil {
			return s, err
		}
	}

	style, ok, err := readAsset(r, "style", int64(domain.BoardCount))
	if err != nil {
		return s, err
	}
	if ok {
		if s, err = s.WithStyleReference(style); err != nil {
			return s, err
		}
	}

	return s.WithMetadata(domain.ProjectMetadata{
		StudentName:    r.FormValue("student"),
		InstructorName: r.FormValue("instructor"),
		ProjectName:    r.FormValue("project"),
	})
}

func readAsset(r *http.Request, field string, ordinal int64) (domain.ImageAsset, bool, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return domain.ImageAsset{}, false, nil
	}
	if err != nil {
		return domain.ImageAsset{}, false, fmt.Errorf("%s の読み込みに失敗しました: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.ImageAsset{}, false, fmt.Errorf("%s の読み込みに失敗しました: %w", field, err)
	}
	a, err := asset.NewImageAsset(data, header.Filename, ordinal)
	if err != nil {
		return domain.ImageAsset{}, false, fmt.Errorf("%s: %w", field, err)
	}
	return a, true, nil
}

// statusFor はエラー種別を HTTP ステータスに対応付けます。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGenerationInFlight):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrNoResult), errors.Is(err, domain.ErrService), errors.Is(err, domain.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string, problems []string) {
	writeJSON(w, status, errorResponse{Error: msg, Problems: problems, Code: status})
}
