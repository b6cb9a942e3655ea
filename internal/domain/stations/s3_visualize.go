package stations

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/Vovarama1992/voxstudio/internal/textutil"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	sceneClipSeconds = 5
	imageVariations  = 4
)

// S3Visualize gets a clip from Veo and falls back to a handful of Imagen
// stills when Veo refuses, fails, or times out.
type S3Visualize struct {
	video  ports.VideoGenerator
	images ports.ImageGenerator
	store  ports.AssetStore
	now    func() time.Time
}

func NewS3Visualize(video ports.VideoGenerator, images ports.ImageGenerator, store ports.AssetStore) *S3Visualize {
	return &S3Visualize{video: video, images: images, store: store, now: time.Now}
}

func AspectRatio(vertical bool) string {
	if vertical {
		return "9:16"
	}
	return "16:9"
}

func (s *S3Visualize) Run(ctx context.Context, prompt, sceneID string, vertical bool) (*models.Visual, error) {
	start := time.Now()
	log.Printf("[S3][START] scene=%s vertical=%v prompt=%q", sceneID, vertical, textutil.Trim(prompt, 100))

	url, err := s.clip(ctx, prompt, AspectRatio(vertical), sceneClipSeconds, fmt.Sprintf("scene-%s", sceneID))
	if err == nil {
		log.Printf("[S3][OK][VEO] scene=%s url=%s dur=%s", sceneID, url, time.Since(start))
		return &models.Visual{Type: models.VisualVideo, URL: url}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Printf("[S3][FALLBACK] scene=%s veo err=%v", sceneID, err)

	urls, err := s.stills(ctx, prompt, sceneID)
	if err != nil {
		log.Printf("[S3][ERR] scene=%s imagen err=%v", sceneID, err)
		return nil, err
	}
	log.Printf("[S3][OK][IMAGEN] scene=%s images=%d dur=%s", sceneID, len(urls), time.Since(start))
	return &models.Visual{Type: models.VisualImage, URLs: urls}, nil
}

// Clip runs Veo only, with no fallback.
func (s *S3Visualize) Clip(ctx context.Context, prompt, aspectRatio string, seconds int) (string, error) {
	return s.clip(ctx, prompt, aspectRatio, seconds, "veo")
}

func (s *S3Visualize) clip(ctx context.Context, prompt, aspectRatio string, seconds int, prefix string) (string, error) {
	clip, err := s.video.GenerateVideo(ctx, prompt, aspectRatio, seconds)
	if err != nil {
		return "", err
	}

	if len(clip.Bytes) > 0 {
		name := fmt.Sprintf("%s-%d-%s.mp4", prefix, s.now().UnixMilli(), uuid.NewString()[:8])
		return s.store.Save(ctx, "assets/videos", name, clip.Bytes)
	}
	if strings.HasPrefix(clip.URI, "https://") || strings.HasPrefix(clip.URI, "http://") {
		return clip.URI, nil
	}
	return "", errors.New("veo returned no playable video")
}

func (s *S3Visualize) stills(ctx context.Context, prompt, sceneID string) ([]string, error) {
	ts := s.now().UnixMilli()
	urls := make([]string, imageVariations)

	g, gctx := errgroup.WithContext(ctx)
	for k := 1; k <= imageVariations; k++ {
		g.Go(func() error {
			img, err := s.images.GenerateImage(gctx, fmt.Sprintf("%s, variation %d", prompt, k))
			if err != nil {
				return err
			}
			url, err := s.store.Save(gctx, "assets/images", fmt.Sprintf("scene-%s-%d-%d.jpg", sceneID, k, ts), img)
			if err != nil {
				return err
			}
			urls[k-1] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
