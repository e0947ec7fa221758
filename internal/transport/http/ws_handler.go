package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lamed-game-service/internal/domain"
	"lamed-game-service/internal/game"
	"lamed-game-service/internal/speech"
)

// Defaults fills in game parameters a start message leaves unset.
type Defaults struct {
	RoundCount       int
	OptionCount      int
	CountdownSeconds int
	LeaderboardLimit int
}

type WSHandler struct {
	service      *game.GameService
	defaults     Defaults
	evalEndpoint string
	upgrader     websocket.Upgrader
}

func NewWSHandler(service *game.GameService, defaults Defaults) *WSHandler {
	return &WSHandler{
		service:  service,
		defaults: defaults,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// WithEvalEndpoint enables the pronounce message backed by the external
// pronunciation evaluator. Without an endpoint, pronounce requests report
// speech as unavailable.
func (h *WSHandler) WithEvalEndpoint(endpoint string) *WSHandler {
	h.evalEndpoint = endpoint
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	GameTag          string `json:"gameTag"`
	Category         string `json:"category"`
	Rounds           int    `json:"rounds"`
	Options          int    `json:"options"`
	CountdownSeconds int    `json:"countdownSeconds"`
	Ordering         bool   `json:"ordering"`
	FreeForm         bool   `json:"freeForm"`
	TimeRanked       bool   `json:"timeRanked"`
}

type answerPayload struct {
	Response []string `json:"response"`
}

type pronouncePayload struct {
	Word string `json:"word"`
}

type pronounceResult struct {
	Word     string `json:"word"`
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback,omitempty"`
}

type leaderboardPayload struct {
	GameTag string `json:"gameTag"`
	Order   string `json:"order"`
	Limit   int    `json:"limit"`
}

type leaderboardResult struct {
	GameTag string                    `json:"gameTag"`
	Order   domain.RankOrder          `json:"order"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// game use cases. One connection drives at most one live session at a
// time; timer-driven snapshots are pushed as "state" messages.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var forwarders sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var sessionID string
	var cancelSub func()
	dropSession := func() {
		if cancelSub != nil {
			cancelSub()
			cancelSub = nil
		}
		if sessionID != "" {
			h.service.Abandon(sessionID)
			sessionID = ""
		}
	}
	defer func() {
		dropSession()
		close(closeSignals)
		forwarders.Wait()
		close(send)
		<-writerDone
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid start payload")
				continue
			}
			dropSession()
			optionCount := orDefault(payload.Options, h.defaults.OptionCount)
			if payload.FreeForm || payload.Ordering {
				optionCount = 0
			}
			view, err := h.service.StartGame(r.Context(), game.StartParams{
				UserID:           userID,
				GameTag:          payload.GameTag,
				Category:         domain.Category(payload.Category),
				RoundCount:       orDefault(payload.Rounds, h.defaults.RoundCount),
				OptionCount:      optionCount,
				CountdownSeconds: payload.CountdownSeconds,
				Ordering:         payload.Ordering,
				TimeRanked:       payload.TimeRanked,
			})
			if err != nil {
				send <- errMsg(startErrorMessage(err))
				continue
			}
			sessionID = view.ID

			updates, cancel, err := h.service.Subscribe(sessionID)
			if err == nil {
				cancelSub = cancel
				forwarders.Add(1)
				go func() {
					defer forwarders.Done()
					for {
						select {
						case update, ok := <-updates:
							if !ok {
								return
							}
							select {
							case send <- outboundMessage[any]{Type: "state", Payload: update}:
							case <-closeSignals:
								return
							}
						case <-closeSignals:
							return
						}
					}
				}()
			}
			send <- outboundMessage[any]{Type: "session", Payload: view}

		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			view, err := h.service.SubmitAnswer(r.Context(), sessionID, payload.Response)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: view}

		case "advance":
			view, err := h.service.Advance(r.Context(), sessionID)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			if view.Phase == domain.PhaseComplete {
				send <- outboundMessage[any]{Type: "complete", Payload: view}
			} else {
				send <- outboundMessage[any]{Type: "session", Payload: view}
			}

		case "reset":
			dropSession()
			send <- outboundMessage[any]{Type: "session", Payload: game.SessionView{Phase: domain.PhaseIdle}}

		case "pronounce":
			var payload pronouncePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Word == "" {
				send <- errMsg("invalid pronounce payload")
				continue
			}
			verdict, err := h.evaluatePronunciation(r.Context(), payload.Word)
			if err != nil {
				send <- errMsg("pronunciation check unavailable right now")
				continue
			}
			send <- outboundMessage[any]{Type: "pronounceResult", Payload: pronounceResult{
				Word:     payload.Word,
				Correct:  verdict.Correct,
				Feedback: verdict.Feedback,
			}}

		case "leaderboard":
			var payload leaderboardPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid leaderboard payload")
				continue
			}
			order := domain.RankOrder(payload.Order)
			if order != domain.RankAscending {
				order = domain.RankDescending
			}
			limit := orDefault(payload.Limit, h.defaults.LeaderboardLimit)
			entries, err := h.service.TopEntries(r.Context(), payload.GameTag, order, limit)
			if err != nil {
				// A failed read renders like an empty board; the cause
				// stays in the logs.
				log.Printf("leaderboard fetch failed game=%s: %v", payload.GameTag, err)
				entries = []domain.LeaderboardEntry{}
			}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: leaderboardResult{
				GameTag: payload.GameTag,
				Order:   order,
				Entries: entries,
			}}

		default:
			send <- errMsg("unsupported message type")
		}
	}
}

// evaluatePronunciation runs one word through the external evaluator:
// connect, submit, wait for a verdict, tear down. The evaluator owns no
// game state, so each check is an isolated session.
func (h *WSHandler) evaluatePronunciation(ctx context.Context, word string) (speech.Verdict, error) {
	if h.evalEndpoint == "" {
		return speech.Verdict{}, domain.ErrSpeechUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	session := speech.NewEvalSession(h.evalEndpoint)
	if err := session.Connect(ctx); err != nil {
		return speech.Verdict{}, err
	}
	defer session.Close()

	if err := session.Send(word); err != nil {
		return speech.Verdict{}, err
	}

	for {
		select {
		case event, ok := <-session.Events():
			if !ok {
				return speech.Verdict{}, domain.ErrSpeechUnavailable
			}
			switch event.Kind {
			case speech.EventVerdict:
				return event.Verdict, nil
			case speech.EventError:
				return speech.Verdict{}, event.Err
			case speech.EventClosed:
				return speech.Verdict{}, domain.ErrSpeechUnavailable
			}
		case <-ctx.Done():
			return speech.Verdict{}, ctx.Err()
		}
	}
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

// startErrorMessage keeps player-facing wording for the states the UI
// must present explicitly.
func startErrorMessage(err error) string {
	if errors.Is(err, domain.ErrInsufficientContent) || errors.Is(err, domain.ErrContentNotFound) {
		return "not enough content in this category, try another one"
	}
	return err.Error()
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
