package workflow

import (
	"github.com/shouni/go-poster-kit/pkg/generator"
	"github.com/shouni/go-poster-kit/pkg/publisher"
	"github.com/shouni/go-poster-kit/pkg/runner"
	"github.com/shouni/go-poster-kit/pkg/slicer"

	"golang.org/x/time/rate"
)

// BuildPosterRunner は、合成画像の生成から分割、保存までを担当する Runner を作成します。
func (m *Manager) BuildPosterRunner() (PosterRunner, error) {
	var limiter *rate.Limiter
	if m.cfg.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(m.cfg.RateInterval), 1)
	}

	gen := generator.NewPosterGenerator(m.imageGenerator, m.promptBuilder, m.cfg.ImageModel, limiter)
	sl := slicer.NewCachedSlicer(slicer.NewPanelSlicer(), m.cfg.SliceCacheTTL)
	pub := publisher.NewPanelPublisher(m.writer, m.cfg.FilePrefix)

	return runner.NewPosterRunner(m.cfg, gen, sl, pub), nil
}
