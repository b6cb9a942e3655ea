package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/Vovarama1992/voxstudio/internal/textutil"
)

const (
	sceneModel = "gemini-2.0-flash"
	reelModel  = "gemini-2.5-flash"
)

type GeminiWriter struct {
	vertex *VertexClient
}

func NewGeminiWriter(vertex *VertexClient) ports.ScriptWriter {
	return &GeminiWriter{vertex: vertex}
}

type gmPart struct {
	Text string `json:"text"`
}

type gmContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []gmPart `json:"parts"`
}

type gmGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type gmRequest struct {
	Contents          []gmContent        `json:"contents"`
	SystemInstruction gmContent          `json:"systemInstruction"`
	GenerationConfig  gmGenerationConfig `json:"generationConfig"`
}

type gmResponse struct {
	Candidates []struct {
		Content gmContent `json:"content"`
	} `json:"candidates"`
}

// generate sends one system+user turn and returns the first text part,
// or empty when the model produced nothing.
func (g *GeminiWriter) generate(ctx context.Context, model, system, user string, cfg gmGenerationConfig) (string, error) {
	cfg.ResponseMimeType = "application/json"
	body := gmRequest{
		Contents:          []gmContent{{Role: "user", Parts: []gmPart{{Text: user}}}},
		SystemInstruction: gmContent{Parts: []gmPart{{Text: system}}},
		GenerationConfig:  cfg,
	}

	var out gmResponse
	if err := g.vertex.postJSON(ctx, g.vertex.ModelURL(model, "generateContent"), body, &out); err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// decodeModelJSON parses model output, retrying once with markdown fences removed.
func decodeModelJSON(text, empty string, out any) error {
	if strings.TrimSpace(text) == "" {
		text = empty
	}
	if err := json.Unmarshal([]byte(text), out); err == nil {
		return nil
	}

	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		log.Printf("[GEMINI][PARSE][ERR] text=%q", textutil.Trim(text, 180))
		return fmt.Errorf("parse generated json: %w", err)
	}
	return nil
}

func (g *GeminiWriter) DraftScenes(ctx context.Context, req ports.SceneRequest) (*models.VideoPlan, error) {
	system := fmt.Sprintf(`You are a professional video director and scriptwriter for a cinematic AI video generation platform.
Your task is to take a user prompt and generate an array of sequential video scenes.

The video duration is: %g seconds.
The video style is: %s.
The animation intensity level is: %s.

If the style is "Educational" or similar, the 'visualPrompt' MUST request vibrant, colorful, 2D or 3D cartoon animations suitable for children's shows. Do not use photorealistic or dark cinematic prompts for educational videos.

Return a raw JSON object with exactly this structure:
{
  "title": "String - the video title",
  "duration": Number - total video duration in seconds,
  "scenes": [
    {
      "id": 1,
      "title": "String - brief scene title",
      "duration": Number - duration of THIS scene in seconds (usually 4-8 seconds),
      "script": "String - narration for this scene, 2-3 words per second",
      "visualPrompt": "String - detailed video generation prompt",
      "animation": "String - how elements animate, e.g. 'fade-in + slow zoom'",
      "transition": "String - transition to the next scene, e.g. 'smooth crossfade'",
      "brollPrompt": "String - alternative b-roll idea"
    }
  ]
}

Rules:
- The sum of all scene 'duration' values MUST equal %g.
- Do NOT wrap the JSON in markdown code blocks.`, req.Duration, req.Style, req.AnimationLevel, req.Duration)

	user := fmt.Sprintf("Generate scene breakdown for this video topic: %q", req.Prompt)

	text, err := g.generate(ctx, sceneModel, system, user, gmGenerationConfig{Temperature: 0.7, MaxOutputTokens: 2048})
	if err != nil {
		return nil, err
	}

	var plan models.VideoPlan
	if err := decodeModelJSON(text, "{}", &plan); err != nil {
		return nil, err
	}
	log.Printf("[GEMINI][SCENES][OK] title=%q scenes=%d", plan.Title, len(plan.Scenes))
	return &plan, nil
}

type gmReelSegment struct {
	Type           models.SegmentType `json:"type"`
	AvatarRequired *bool              `json:"avatarRequired"`
	Duration       float64            `json:"duration"`
	Script         string             `json:"script"`
	VisualPrompt   string             `json:"visualPrompt"`
}

type gmReel struct {
	Title         string          `json:"title"`
	TotalDuration float64         `json:"totalDuration"`
	Segments      []gmReelSegment `json:"segments"`
}

func (g *GeminiWriter) DraftReel(ctx context.Context, prompt string, duration float64) (*models.ReelPlan, error) {
	count := int(duration / 5)
	system := fmt.Sprintf(`You are a professional Instagram Reels scriptwriter and director.
Generate a strictly structured JSON response for a vertical 9:16 reel.
The reel MUST alternate exactly between an 'avatar' speaking segment and a 'visual' b-roll segment.
Each segment MUST be exactly 5 seconds long.
There should be exactly %d segments to fill %g seconds.

The JSON format MUST be exactly:
{
  "title": "A catchy, short title for the reel",
  "totalDuration": %g,
  "segments": [
    {"type": "avatar", "duration": 5, "script": "The exact words the presenter says to the camera."},
    {"type": "visual", "duration": 5, "visualPrompt": "A highly detailed, cinematic prompt for an AI image generator."}
  ]
}

Rules:
1. Segments MUST strictly alternate: avatar, visual, avatar, visual.
2. The FIRST segment MUST be "avatar".
3. Every segment MUST have a duration of 5.
4. Total segments must be exactly %d.`, count, duration, duration, count)

	user := fmt.Sprintf("User Request: Create a %g-second Instagram reel about: %s", duration, prompt)

	text, err := g.generate(ctx, reelModel, system, user, gmGenerationConfig{Temperature: 0.7})
	if err != nil {
		return nil, err
	}

	var raw gmReel
	if err := decodeModelJSON(text, "{}", &raw); err != nil {
		return nil, err
	}

	plan := &models.ReelPlan{
		Title:         raw.Title,
		TotalDuration: raw.TotalDuration,
		Segments:      make([]models.Segment, len(raw.Segments)),
	}
	for i, s := range raw.Segments {
		typ := s.Type
		if typ == "" && s.AvatarRequired != nil {
			typ = models.SegmentVisual
			if *s.AvatarRequired {
				typ = models.SegmentAvatar
			}
		}
		plan.Segments[i] = models.Segment{
			Type:         typ,
			Duration:     s.Duration,
			Script:       s.Script,
			VisualPrompt: s.VisualPrompt,
		}
	}
	log.Printf("[GEMINI][REEL][OK] title=%q segments=%d", plan.Title, len(plan.Segments))
	return plan, nil
}

func (g *GeminiWriter) EditScenes(ctx context.Context, current []models.Scene, instructions string, duration float64, style string) ([]models.Scene, error) {
	currentJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, err
	}

	system := fmt.Sprintf(`You are an expert cinematic director and scriptwriter.
The user has provided an existing list of video scenes in JSON format, representing a %g-second video in a %q style.
The user has provided instructions to edit, refine, or rewrite these scenes.

Current Scenes (JSON):
%s

Apply the user's instructions and return the UPDATED list of scenes in the same JSON array format.

Requirements:
1. Return ONLY a raw JSON array.
2. Objects must have these keys: "id", "title", "duration", "script", "visualPrompt", "animation", "transition", "brollPrompt".
3. Do not change "id" values of existing scenes unless the user asks to remove or add scenes.
4. Keep the total duration roughly equal to %g seconds.
5. Do NOT wrap the array in markdown blocks.`, duration, style, currentJSON, duration)

	user := fmt.Sprintf("Edit the scenes using these instructions: %q", instructions)

	text, err := g.generate(ctx, sceneModel, system, user, gmGenerationConfig{Temperature: 0.7, MaxOutputTokens: 2048})
	if err != nil {
		return nil, err
	}

	var scenes []models.Scene
	if err := decodeModelJSON(text, "[]", &scenes); err != nil {
		return nil, err
	}
	log.Printf("[GEMINI][EDIT][OK] scenes=%d", len(scenes))
	return scenes, nil
}

// EnhancePrompt never fails on model trouble; it falls back to a
// templated prompt and the raw idea as narration.
func (g *GeminiWriter) EnhancePrompt(ctx context.Context, prompt, aspectRatio string, duration int) (models.EnhancedPrompt, error) {
	fallback := models.EnhancedPrompt{
		VideoPrompt:     fmt.Sprintf("Cinematic high-quality video: %s. Shot in 4K with beautiful lighting, smooth camera movements, and professional color grading. Photorealistic quality with ambient soundtrack.", prompt),
		NarrationScript: prompt,
	}

	system := fmt.Sprintf(`You are a world-class video production AI director.
Take a simple user idea and transform it into TWO things:

1. videoPrompt: a highly detailed, cinematic video generation prompt. Describe camera movement, lighting, colors, motion, sound design hints and quality descriptors. Keep it under 200 words.
2. narrationScript: a 2-3 sentence voiceover matching the tone of the video. Keep it under 50 words.

The video is %s aspect ratio and %d seconds long.

Respond ONLY in JSON format:
{"videoPrompt": "...", "narrationScript": "..."}`, aspectRatio, duration)

	user := fmt.Sprintf("Create a stunning video from this idea: %q", prompt)

	text, err := g.generate(ctx, sceneModel, system, user, gmGenerationConfig{Temperature: 0.8, MaxOutputTokens: 1024})
	if err != nil {
		if ctx.Err() != nil {
			return models.EnhancedPrompt{}, ctx.Err()
		}
		log.Printf("[GEMINI][ENHANCE][FALLBACK] err=%v", err)
		return fallback, nil
	}

	var out models.EnhancedPrompt
	if err := decodeModelJSON(text, "{}", &out); err != nil {
		log.Printf("[GEMINI][ENHANCE][FALLBACK] unparsable answer")
		return fallback, nil
	}
	if out.VideoPrompt == "" {
		out.VideoPrompt = fmt.Sprintf("Cinematic video: %s. High quality, 4K, professional.", prompt)
	}
	if out.NarrationScript == "" {
		out.NarrationScript = prompt
	}
	return out, nil
}
