package speech

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"lamed-game-service/internal/domain"
)

// EvalState is the lifecycle of a pronunciation-evaluation session.
type EvalState string

const (
	StateDisconnected EvalState = "disconnected"
	StateConnecting   EvalState = "connecting"
	StateConnected    EvalState = "connected"
	StateClosed       EvalState = "closed"
)

// EventKind tags entries on the session's single event stream.
type EventKind string

const (
	EventVerdict EventKind = "verdict"
	EventError   EventKind = "error"
	EventClosed  EventKind = "closed"
)

// Event is one entry on the evaluation event stream. Exactly one of
// Verdict/Err is meaningful for verdict/error kinds.
type Event struct {
	Kind    EventKind
	Verdict Verdict
	Err     error
}

// Verdict is the collaborator's call on one pronunciation attempt.
type Verdict struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// EvalSession wraps the bidirectional evaluation collaborator in an
// explicit state machine with one typed event stream, replacing ad hoc
// nested callbacks. Cancellation is Close, which is idempotent; events
// arriving after Close are dropped, never delivered to a dead consumer.
type EvalSession struct {
	endpoint string

	mu     sync.Mutex
	state  EvalState
	conn   *websocket.Conn
	closed bool

	events    chan Event
	closeOnce sync.Once
	done      chan struct{}
}

func NewEvalSession(endpoint string) *EvalSession {
	return &EvalSession{
		endpoint: endpoint,
		state:    StateDisconnected,
		events:   make(chan Event, 8),
		done:     make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *EvalSession) State() EvalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events is the session's single outbound stream: verdicts, errors, and
// a final closed event.
func (s *EvalSession) Events() <-chan Event {
	return s.events
}

// Connect dials the evaluation endpoint and starts the read loop.
func (s *EvalSession) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return fmt.Errorf("eval session already %s", s.state)
	}
	s.state = StateConnecting
	s.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrSpeechUnavailable, err)
	}

	s.mu.Lock()
	s.state = StateConnected
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)
	return nil
}

// Send submits the target word the player is about to pronounce.
func (s *EvalSession) Send(target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		return domain.ErrSpeechUnavailable
	}
	return s.conn.WriteJSON(map[string]string{"type": "target", "word": target})
}

// Close tears the session down. Safe to call any number of times and
// from any state.
func (s *EvalSession) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		conn := s.conn
		s.mu.Unlock()

		close(s.done)
		if conn != nil {
			_ = conn.Close()
		}
		s.emit(Event{Kind: EventClosed})

		// Mark the stream dead under the lock before closing it, so a
		// concurrent emit cannot send into a closed channel.
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.events)
	})
}

func (s *EvalSession) readLoop(conn *websocket.Conn) {
	defer s.Close()
	for {
		var msg struct {
			Type     string `json:"type"`
			Correct  bool   `json:"correct"`
			Feedback string `json:"feedback"`
			Message  string `json:"message"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.done:
				// Closed locally; the read error is the teardown, not news.
			default:
				s.emit(Event{Kind: EventError, Err: fmt.Errorf("%w: %v", domain.ErrSpeechUnavailable, err)})
			}
			return
		}
		switch msg.Type {
		case "verdict":
			s.emit(Event{Kind: EventVerdict, Verdict: Verdict{Correct: msg.Correct, Feedback: msg.Feedback}})
		case "error":
			s.emit(Event{Kind: EventError, Err: fmt.Errorf("%w: %s", domain.ErrSpeechUnavailable, msg.Message)})
		}
	}
}

// emit drops events when the stream is closed or the consumer lags
// instead of blocking the read loop.
func (s *EvalSession) emit(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- event:
	default:
	}
}
