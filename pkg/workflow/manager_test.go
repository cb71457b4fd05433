package workflow

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-poster-kit/pkg/config"
	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/generator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImageGenerator struct {
	requests []generator.ImageRequest
	data     []byte
}

func (s *stubImageGenerator) GenerateImage(_ context.Context, req generator.ImageRequest) (*generator.ImageResponse, error) {
	s.requests = append(s.requests, req)
	return &generator.ImageResponse{Data: s.data, MimeType: "image/png"}, nil
}

func TestNew(t *testing.T) {
	t.Run("APIキーも生成器もなければエラー", func(t *testing.T) {
		_, err := New(context.Background(), ManagerArgs{Config: config.DefaultConfig()})
		assert.Error(t, err)
	})

	t.Run("ImageModelが空ならエラー", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ImageModel = ""
		_, err := New(context.Background(), ManagerArgs{Config: cfg, ImageGenerator: &stubImageGenerator{}})
		assert.Error(t, err)
	})
}

func TestManager_BuildPosterRunner(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1600, 50))))
	stub := &stubImageGenerator{data: buf.Bytes()}

	cfg := config.DefaultConfig()
	cfg.RateInterval = 0
	cfg.FilePrefix = "Studio"

	m, err := New(context.Background(), ManagerArgs{Config: cfg, ImageGenerator: stub})
	require.NoError(t, err)

	r, err := m.BuildPosterRunner()
	require.NoError(t, err)

	s := domain.NewSession()
	for i := 0; i < domain.BoardCount; i++ {
		s, err = s.WithBoard(i, domain.ImageAsset{Data: []byte{byte(i)}, MimeType: "image/png", OrdinalID: int64(i)})
		require.NoError(t, err)
	}
	s, err = s.WithMetadata(domain.ProjectMetadata{StudentName: "Noura", InstructorName: "Dr. Khan", ProjectName: "Oasis"})
	require.NoError(t, err)

	dir := t.TempDir()
	s, paths, err := r.RunAndSave(context.Background(), s, dir)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseReady, s.Phase())
	require.Len(t, paths, 4)
	assert.Equal(t, "Studio-Oasis-1.png", filepath.Base(paths[0]))

	require.Len(t, stub.requests, 1)
	req := stub.requests[0]
	assert.Equal(t, config.DefaultImageModel, req.Model)
	assert.Len(t, req.Images, 4)
	assert.True(t, strings.Contains(req.Prompt, config.DefaultInstitutionLines[0]))
}
