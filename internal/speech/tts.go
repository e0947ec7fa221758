package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lamed-game-service/internal/domain"
)

const synthRequestTimeout = 10 * time.Second

// Synthesizer converts text to speech through a hosted TTS endpoint and
// hands back the raw audio bytes. The endpoint is opaque request/response;
// playback state lives entirely in the client.
type Synthesizer struct {
	endpoint string
	voice    string
	client   *http.Client
}

func NewSynthesizer(endpoint, voice string) *Synthesizer {
	return &Synthesizer{
		endpoint: endpoint,
		voice:    voice,
		client:   &http.Client{Timeout: synthRequestTimeout},
	}
}

// Synthesize requests audio for the given text. Failures map to
// domain.ErrSpeechUnavailable so callers surface them inline instead of
// crashing the game session.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.endpoint == "" {
		return nil, domain.ErrSpeechUnavailable
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("tl", "iw")
	if s.voice != "" {
		params.Set("voice", s.voice)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build synth request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSpeechUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrSpeechUnavailable, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}
