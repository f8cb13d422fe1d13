// Package lsp implements the language-server protocol client: a subprocess
// session speaking Content-Length-framed JSON-RPC 2.0 over stdio, covering
// the initialize/didOpen/didChange/semanticTokens subset.
package lsp

import (
	"bufio"
	"errors"
	"io"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"
)

// State is a session's lifecycle phase.
type State int

const (
	// StateStarting means the process is up and initialize is in flight.
	StateStarting State = iota
	// StateReady means the server answered initialize.
	StateReady
	// StateCrashed means the reader hit a stream or framing failure.
	StateCrashed
	// StateTerminated means the session was closed on purpose.
	StateTerminated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateCrashed:
		return "crashed"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// RequestKind records why a request was issued, so a response arriving
// without context can be interpreted by the host.
type RequestKind int

const (
	// InitializationRequest is the initialize handshake.
	InitializationRequest RequestKind = iota
	// SemanticTokenRequest asks for a document's semantic tokens.
	SemanticTokenRequest
)

// PendingRequest is one in-flight request in issue order.
type PendingRequest struct {
	ID   int64
	Kind RequestKind
	URI  string
}

// Message is a delivery to the host: a Response or a Crash. The host owns
// every message it receives.
type Message interface {
	message()
}

// Response carries one inbound message body, response or notification.
type Response struct {
	Body []byte
}

func (Response) message() {}

// Crash reports the death of the session's reader.
type Crash struct {
	Client string
	Err    error
}

func (Crash) message() {}

// queueSize bounds the delivery channel. The reader blocks when the host
// falls this far behind, preserving per-session FIFO order.
const queueSize = 64

// Session is one language-server subprocess. Construction spawns the
// process, sends initialize, and starts the background reader.
type Session struct {
	id     string
	client string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	tr     *Transport

	mu      sync.Mutex
	state   State
	nextID  int64
	pending []PendingRequest

	messages chan Message
	log      zerolog.Logger
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// Start spawns the server and begins the handshake. command's base name
// selects the initialization options; rootURI is the workspace root.
func Start(command string, args []string, rootURI string, opts ...SessionOption) (*Session, error) {
	s := &Session{
		id:       uuid.New().String(),
		client:   command,
		state:    StateStarting,
		messages: make(chan Message, queueSize),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cmd := exec.Command(command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &ServerError{Client: command, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ServerError{Client: command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &ServerError{Client: command, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &ServerError{Client: command, Err: err}
	}

	s.cmd = cmd
	s.stdin = stdin
	s.tr = NewTransport(stdout, stdin)

	s.log.Info().
		Str("session", s.id).
		Str("client", s.client).
		Msg("language server started")

	go s.drainStderr(stderr)
	go s.readLoop()

	if _, err := s.SendRequest(InitializeRequest(baseName(command), rootURI), InitializationRequest, ""); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Client returns the server command name.
func (s *Session) Client() string { return s.client }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages is the delivery channel. It is closed after a crash event or
// termination; messages already read keep their stdout order.
func (s *Session) Messages() <-chan Message {
	return s.messages
}

// SendRequest injects the next request id into body, records the pending
// kind, and writes the frame. The id is returned for reconciliation.
func (s *Session) SendRequest(body []byte, kind RequestKind, uri string) (int64, error) {
	s.mu.Lock()
	if s.state == StateCrashed || s.state == StateTerminated {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}
	s.nextID++
	id := s.nextID
	s.pending = append(s.pending, PendingRequest{ID: id, Kind: kind, URI: uri})
	s.mu.Unlock()

	framed, err := sjson.SetBytes(body, "id", id)
	if err != nil {
		return 0, &WriteError{Err: err}
	}
	if err := s.tr.Write(framed); err != nil {
		s.log.Warn().Str("session", s.id).Err(err).Msg("request write failed")
		s.dropPending(id)
		return 0, err
	}
	return id, nil
}

// SendNotification writes body as-is; notifications carry no id and leave
// no pending record.
func (s *Session) SendNotification(body []byte) error {
	s.mu.Lock()
	if s.state == StateCrashed || s.state == StateTerminated {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	if err := s.tr.Write(body); err != nil {
		s.log.Warn().Str("session", s.id).Err(err).Msg("notification write failed")
		return err
	}
	return nil
}

// TakePending reconciles a response id against the pending log, removing
// and returning the matching record. Responses may arrive in any order.
func (s *Session) TakePending(id int64) (PendingRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pending {
		if p.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return p, true
		}
	}
	return PendingRequest{}, false
}

// Close terminates the session and its subprocess.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateTerminated {
		s.mu.Unlock()
		return nil
	}
	s.state = StateTerminated
	s.mu.Unlock()

	s.stdin.Close()
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	return nil
}

func (s *Session) dropPending(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pending {
		if p.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// readLoop reads inbound messages strictly in order and forwards each as
// an owned Message. The first read failure becomes a crash event, except
// during deliberate termination.
func (s *Session) readLoop() {
	defer close(s.messages)
	for {
		body, err := s.tr.Read()
		if err != nil {
			s.mu.Lock()
			terminated := s.state == StateTerminated
			if !terminated {
				s.state = StateCrashed
			}
			s.mu.Unlock()

			if terminated {
				return
			}
			var fe *FramingError
			if errors.As(err, &fe) {
				s.log.Error().Str("session", s.id).Err(err).Msg("protocol framing violated")
			} else {
				s.log.Error().Str("session", s.id).Err(err).Msg("server stream failed")
			}
			s.messages <- Crash{Client: s.client, Err: err}
			return
		}
		s.observeResponse(body)
		s.messages <- Response{Body: body}
	}
}

// observeResponse flips the session to Ready and completes the handshake
// when the initialize response shows up.
func (s *Session) observeResponse(body []byte) {
	id, ok := ResponseID(body)
	if !ok {
		return
	}
	s.mu.Lock()
	isInit := false
	for _, p := range s.pending {
		if p.ID == id && p.Kind == InitializationRequest {
			isInit = true
			break
		}
	}
	if isInit && s.state == StateStarting {
		s.state = StateReady
	}
	s.mu.Unlock()

	if isInit {
		if err := s.SendNotification(InitializedNotification()); err != nil {
			s.log.Warn().Str("session", s.id).Err(err).Msg("initialized notification failed")
		}
		s.log.Info().Str("session", s.id).Str("client", s.client).Msg("server ready")
	}
}

func (s *Session) drainStderr(r io.Reader) {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scan.Scan() {
		s.log.Debug().Str("session", s.id).Str("client", s.client).Msg(scan.Text())
	}
}

func baseName(command string) string {
	for i := len(command) - 1; i >= 0; i-- {
		if command[i] == '/' || command[i] == '\\' {
			return command[i+1:]
		}
	}
	return command
}
