package infra

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresVideoRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresVideoRepo(pool *pgxpool.Pool) ports.VideoRepository {
	return &PostgresVideoRepo{pool: pool}
}

func (r *PostgresVideoRepo) SaveVideo(ctx context.Context, v *models.Video) error {
	query := `
		INSERT INTO videos (id, prompt, title, mode, video_url, tts_audio_url, settings, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET video_url = EXCLUDED.video_url,
		    tts_audio_url = EXCLUDED.tts_audio_url,
		    settings = EXCLUDED.settings
	`
	settings := v.Settings
	if settings == nil {
		settings = map[string]string{}
	}
	_, err := r.pool.Exec(ctx, query,
		v.ID, v.Prompt, v.Title, v.Mode, v.VideoURL, v.TTSAudioURL, settings, v.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("save video: %w", err)
	}
	log.Printf("[DB][VIDEO][SAVE] id=%s url=%s", v.ID, v.VideoURL)
	return nil
}

func (r *PostgresVideoRepo) ListVideos(ctx context.Context, limit int) ([]models.Video, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prompt, title, mode, video_url, tts_audio_url, settings, generated_at
		FROM videos
		ORDER BY generated_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	out := []models.Video{}
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.Prompt, &v.Title, &v.Mode, &v.VideoURL, &v.TTSAudioURL, &v.Settings, &v.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetVideo returns nil, nil when the id is unknown.
func (r *PostgresVideoRepo) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	err := r.pool.QueryRow(ctx, `
		SELECT id, prompt, title, mode, video_url, tts_audio_url, settings, generated_at
		FROM videos
		WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Prompt, &v.Title, &v.Mode, &v.VideoURL, &v.TTSAudioURL, &v.Settings, &v.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &v, nil
}

// MemoryVideoRepo keeps history in process when no database is configured.
type MemoryVideoRepo struct {
	mu     sync.RWMutex
	videos map[string]models.Video
}

func NewMemoryVideoRepo() *MemoryVideoRepo {
	return &MemoryVideoRepo{videos: map[string]models.Video{}}
}

func (r *MemoryVideoRepo) SaveVideo(_ context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos[v.ID] = *v
	return nil
}

func (r *MemoryVideoRepo) ListVideos(_ context.Context, limit int) ([]models.Video, error) {
	r.mu.RLock()
	out := make([]models.Video, 0, len(r.videos))
	for _, v := range r.videos {
		out = append(out, v)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryVideoRepo) GetVideo(_ context.Context, id string) (*models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}
