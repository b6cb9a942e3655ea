package infra

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
)

const veoModel = "veo-001"

var ErrVeoTimeout = errors.New("veo operation did not finish in time")

type VeoClient struct {
	vertex    *VertexClient
	model     string
	pollEvery time.Duration
	maxPolls  int
}

func NewVeoClient(vertex *VertexClient, pollEvery time.Duration, maxPolls int) ports.VideoGenerator {
	if pollEvery <= 0 {
		pollEvery = 5 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 60
	}
	return &VeoClient{vertex: vertex, model: veoModel, pollEvery: pollEvery, maxPolls: maxPolls}
}

type veoRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoInstance struct {
	Prompt string `json:"prompt"`
}

type veoParameters struct {
	AspectRatio     string `json:"aspectRatio"`
	SampleCount     int    `json:"sampleCount"`
	DurationSeconds int    `json:"durationSeconds"`
}

type veoOperation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response json.RawMessage `json:"response"`
}

type veoVideo struct {
	URI                string `json:"uri"`
	GcsURI             string `json:"gcsUri"`
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

// veoResult covers the shapes Veo has answered with over time.
type veoResult struct {
	Predictions []struct {
		Video              string `json:"video"`
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
	GeneratedVideos []struct {
		Video veoVideo `json:"video"`
	} `json:"generatedVideos"`
	Videos []veoVideo `json:"videos"`
}

func (c *VeoClient) GenerateVideo(ctx context.Context, prompt, aspectRatio string, seconds int) (*models.GeneratedClip, error) {
	body := veoRequest{
		Instances: []veoInstance{{Prompt: prompt}},
		Parameters: veoParameters{
			AspectRatio:     aspectRatio,
			SampleCount:     1,
			DurationSeconds: seconds,
		},
	}

	var op veoOperation
	if err := c.vertex.postJSON(ctx, c.vertex.ModelURL(c.model, "predictLongRunning"), body, &op); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = "Veo API is not available."
			}
			return nil, &ports.UnavailableError{Message: msg}
		}
		return nil, fmt.Errorf("veo start: %w", err)
	}
	if op.Name == "" {
		return nil, errors.New("veo start: no operation name returned")
	}
	log.Printf("[VEO][START] op=%s aspect=%s seconds=%d", op.Name, aspectRatio, seconds)

	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for poll := 1; poll <= c.maxPolls; poll++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		var raw json.RawMessage
		if err := c.vertex.getJSON(ctx, c.vertex.OperationURL(op.Name), &raw); err != nil {
			log.Printf("[VEO][POLL][ERR] op=%s poll=%d err=%v", op.Name, poll, err)
			return nil, fmt.Errorf("veo poll: %w", err)
		}
		var st veoOperation
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("decode veo operation: %w", err)
		}
		if !st.Done {
			continue
		}
		if st.Error != nil {
			return nil, fmt.Errorf("veo operation failed: %s", st.Error.Message)
		}

		result := st.Response
		if len(result) == 0 {
			result = raw
		}
		clip, err := extractClip(result)
		if err != nil {
			return nil, err
		}
		log.Printf("[VEO][OK] op=%s polls=%d bytes=%d uri=%q", op.Name, poll, len(clip.Bytes), clip.URI)
		return clip, nil
	}

	return nil, ErrVeoTimeout
}

func extractClip(raw json.RawMessage) (*models.GeneratedClip, error) {
	var res veoResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, fmt.Errorf("decode veo result: %w", err)
		}
	}

	var candidates []veoVideo
	if len(res.Predictions) > 0 {
		p := res.Predictions[0]
		candidates = append(candidates, veoVideo{URI: p.Video, BytesBase64Encoded: p.BytesBase64Encoded})
	}
	if len(res.GeneratedVideos) > 0 {
		candidates = append(candidates, res.GeneratedVideos[0].Video)
	}
	if len(res.Videos) > 0 {
		candidates = append(candidates, res.Videos[0])
	}

	for _, v := range candidates {
		switch {
		case v.URI != "":
			return &models.GeneratedClip{URI: v.URI}, nil
		case v.GcsURI != "":
			return &models.GeneratedClip{URI: v.GcsURI}, nil
		case v.BytesBase64Encoded != "":
			data, err := base64.StdEncoding.DecodeString(v.BytesBase64Encoded)
			if err != nil {
				return nil, fmt.Errorf("decode veo bytes: %w", err)
			}
			return &models.GeneratedClip{Bytes: data}, nil
		}
	}
	return nil, errors.New("veo finished without a video")
}
