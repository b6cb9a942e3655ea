package infra

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Vovarama1992/voxstudio/internal/ports"
)

const (
	imagenModel  = "imagegeneration@006"
	imagenSuffix = ", cinematic, highly detailed, 8k"
)

type ImagenClient struct {
	vertex *VertexClient
}

func NewImagenClient(vertex *VertexClient) ports.ImageGenerator {
	return &ImagenClient{vertex: vertex}
}

type imagenRequest struct {
	Instances  []veoInstance    `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenParameters struct {
	SampleCount   int `json:"sampleCount"`
	OutputOptions struct {
		MimeType string `json:"mimeType"`
	} `json:"outputOptions"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
}

// GenerateImage returns one JPEG for the prompt.
func (c *ImagenClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	body := imagenRequest{Instances: []veoInstance{{Prompt: prompt + imagenSuffix}}}
	body.Parameters.SampleCount = 1
	body.Parameters.OutputOptions.MimeType = "image/jpeg"

	var out imagenResponse
	if err := c.vertex.postJSON(ctx, c.vertex.ModelURL(imagenModel, "predict"), body, &out); err != nil {
		return nil, fmt.Errorf("imagen: %w", err)
	}
	if len(out.Predictions) == 0 || out.Predictions[0].BytesBase64Encoded == "" {
		return nil, errors.New("imagen: no image data returned")
	}

	data, err := base64.StdEncoding.DecodeString(out.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("imagen: decode: %w", err)
	}
	return data, nil
}
