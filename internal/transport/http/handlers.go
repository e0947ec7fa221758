package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"lamed-game-service/internal/domain"
	"lamed-game-service/internal/game"
	"lamed-game-service/internal/speech"
)

// LeaderboardHandler serves ranked entries as JSON:
// GET /leaderboard?game={tag}&order=asc|desc&limit=N
// An empty store yields an empty entries array, never an error, so the
// UI can render its "no champions yet" state.
func LeaderboardHandler(service *game.GameService, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameTag := r.URL.Query().Get("game")
		if gameTag == "" {
			http.Error(w, "missing game", http.StatusBadRequest)
			return
		}
		order := domain.RankOrder(r.URL.Query().Get("order"))
		if order != domain.RankAscending {
			order = domain.RankDescending
		}
		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		entries, err := service.TopEntries(r.Context(), gameTag, order, limit)
		if err != nil {
			log.Printf("leaderboard fetch failed game=%s: %v", gameTag, err)
			entries = []domain.LeaderboardEntry{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(leaderboardResult{
			GameTag: gameTag,
			Order:   order,
			Entries: entries,
		})
	}
}

// SynthesizeHandler proxies text-to-speech:
// GET /speech/synthesize?text=...
// The collaborator's audio bytes pass through untouched; its failures
// surface as 502 so the UI disables the audio control without touching
// the game session.
func SynthesizeHandler(synth *speech.Synthesizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text := r.URL.Query().Get("text")
		if text == "" {
			http.Error(w, "missing text", http.StatusBadRequest)
			return
		}

		audio, err := synth.Synthesize(r.Context(), text)
		if err != nil {
			if errors.Is(err, domain.ErrSpeechUnavailable) {
				http.Error(w, "speech synthesis unavailable", http.StatusBadGateway)
			} else {
				http.Error(w, "speech synthesis failed", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(audio)
	}
}
