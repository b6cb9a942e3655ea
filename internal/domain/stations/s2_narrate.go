package stations

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/Vovarama1992/voxstudio/internal/textutil"
	"github.com/google/uuid"
)

// bytes of mp3 per second, rough
const audioBytesPerSecond = 16000

type S2Narrate struct {
	tts   ports.SpeechSynthesizer
	store ports.AssetStore
	now   func() time.Time
}

func NewS2Narrate(tts ports.SpeechSynthesizer, store ports.AssetStore) *S2Narrate {
	return &S2Narrate{tts: tts, store: store, now: time.Now}
}

func (s *S2Narrate) Run(ctx context.Context, text, language string) (*models.Narration, error) {
	start := time.Now()
	log.Printf("[S2][START] chars=%d text=%q", len(text), textutil.Trim(text, 80))

	audio, err := s.tts.Synthesize(ctx, text, language)
	if err != nil && ctx.Err() == nil {
		log.Printf("[S2][ERR][FIRST] err=%v", err)

		retryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		audio, err = s.tts.Synthesize(retryCtx, text, language)
		cancel()
	}
	if err != nil {
		log.Printf("[S2][ERR] err=%v", err)
		return nil, err
	}

	name := fmt.Sprintf("tts-%d-%s.mp3", s.now().UnixMilli(), uuid.NewString()[:8])
	url, err := s.store.Save(ctx, "audio", name, audio)
	if err != nil {
		log.Printf("[S2][ERR] save: %v", err)
		return nil, err
	}

	n := &models.Narration{
		AudioURL: url,
		Duration: float64(len(audio)) / audioBytesPerSecond,
	}
	log.Printf("[S2][OK] url=%s bytes=%d approx_sec=%.1f dur=%s", url, len(audio), n.Duration, time.Since(start))
	return n, nil
}
