package infra

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/Vovarama1992/voxstudio/internal/textutil"
	"github.com/gorilla/websocket"
)

var ErrNoAudio = errors.New("no audio data received from TTS service")

// WSSpeechClient streams speech from a websocket TTS server. The server
// answers a {text, language} message with binary audio frames, or text
// frames carrying base64 audio, and closes or goes quiet when done.
type WSSpeechClient struct {
	url          string
	dialer       *websocket.Dialer
	firstTimeout time.Duration
	idleTimeout  time.Duration
}

func NewWSSpeechClient(url string) *WSSpeechClient {
	return &WSSpeechClient{
		url:          url,
		dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		firstTimeout: 15 * time.Second,
		idleTimeout:  3 * time.Second,
	}
}

// WithTimeouts overrides the wait for the first chunk and the idle gap
// that ends a stream.
func (c *WSSpeechClient) WithTimeouts(first, idle time.Duration) *WSSpeechClient {
	c.firstTimeout = first
	c.idleTimeout = idle
	return c
}

var _ ports.SpeechSynthesizer = (*WSSpeechClient)(nil)

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type ttsFrame struct {
	Audio string `json:"audio"`
}

func (c *WSSpeechClient) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if language == "" {
		language = "en"
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("tts dial: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(ttsRequest{Text: text, Language: language}); err != nil {
		return nil, fmt.Errorf("tts send: %w", err)
	}
	log.Printf("[TTS][SEND] chars=%d lang=%s", len(text), language)

	var audio bytes.Buffer
	frames := 0

	// Only audio moves the deadline; status frames do not keep the call open.
	deadline := time.Now().Add(c.firstTimeout)
	appendAudio := func(chunk []byte) {
		audio.Write(chunk)
		frames++
		deadline = time.Now().Add(c.idleTimeout)
	}

	for {
		_ = conn.SetReadDeadline(deadline)

		mt, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if streamEnded(err) {
				break
			}
			return nil, fmt.Errorf("tts read: %w", err)
		}

		switch mt {
		case websocket.BinaryMessage:
			appendAudio(data)
		case websocket.TextMessage:
			var f ttsFrame
			if json.Unmarshal(data, &f) != nil || f.Audio == "" {
				log.Printf("[TTS][MSG] %s", textutil.Trim(string(data), 200))
				continue
			}
			chunk, err := base64.StdEncoding.DecodeString(f.Audio)
			if err != nil {
				log.Printf("[TTS][MSG][ERR] bad base64 audio: %v", err)
				continue
			}
			appendAudio(chunk)
		}
	}

	if audio.Len() == 0 {
		return nil, ErrNoAudio
	}
	log.Printf("[TTS][OK] frames=%d bytes=%d", frames, audio.Len())
	return audio.Bytes(), nil
}

// streamEnded reports a timeout or a close frame; both finish the stream.
func streamEnded(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
