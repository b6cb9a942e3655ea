package ports

import "context"

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}
