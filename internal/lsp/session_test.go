package lsp

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// testSession wires a session to in-memory pipes instead of a subprocess.
// The returned writer is the fake server's stdout end.
func testSession(t *testing.T) (*Session, *io.PipeWriter) {
	t.Helper()
	serverIn, stdin := io.Pipe()   // what the session writes
	stdout, serverOut := io.Pipe() // what the session reads

	s := &Session{
		id:       "test",
		client:   "fakeserver",
		stdin:    stdin,
		tr:       NewTransport(stdout, stdin),
		state:    StateStarting,
		messages: make(chan Message, queueSize),
		log:      zerolog.Nop(),
	}
	go s.readLoop()

	// Drain the session's outbound frames so writes never block.
	outbound := NewTransport(serverIn, io.Discard)
	go func() {
		for {
			if _, err := outbound.Read(); err != nil {
				return
			}
		}
	}()

	t.Cleanup(func() {
		stdin.Close()
		serverOut.Close()
	})
	return s, serverOut
}

func recvMessage(t *testing.T, s *Session) Message {
	t.Helper()
	select {
	case m, ok := <-s.Messages():
		if !ok {
			t.Fatal("message channel closed early")
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
		return nil
	}
}

func TestSessionDeliversResponsesInOrder(t *testing.T) {
	s, serverOut := testSession(t)
	server := NewTransport(strings.NewReader(""), serverOut)

	bodies := []string{
		`{"jsonrpc":"2.0","id":7,"result":1}`,
		`{"jsonrpc":"2.0","method":"note"}`,
		`{"jsonrpc":"2.0","id":8,"result":2}`,
	}
	go func() {
		for _, b := range bodies {
			server.Write([]byte(b))
		}
	}()

	for _, want := range bodies {
		m := recvMessage(t, s)
		resp, ok := m.(Response)
		if !ok {
			t.Fatalf("expected Response, got %T", m)
		}
		if string(resp.Body) != want {
			t.Errorf("body %q, want %q", resp.Body, want)
		}
	}
}

func TestSessionCrashOnMalformedHeader(t *testing.T) {
	s, serverOut := testSession(t)

	go serverOut.Write([]byte("Bogus-Header: 3\r\n\r\nxxx"))

	m := recvMessage(t, s)
	crash, ok := m.(Crash)
	if !ok {
		t.Fatalf("expected Crash, got %T", m)
	}
	if crash.Client != "fakeserver" {
		t.Errorf("crash client %q", crash.Client)
	}
	var fe *FramingError
	if !errors.As(crash.Err, &fe) {
		t.Errorf("crash error %v, want FramingError", crash.Err)
	}
	if s.State() != StateCrashed {
		t.Errorf("state %v, want crashed", s.State())
	}

	// The crash is the final delivery.
	if _, ok := <-s.Messages(); ok {
		t.Error("channel must be closed after the crash event")
	}
}

func TestSessionCrashOnStreamClose(t *testing.T) {
	s, serverOut := testSession(t)

	serverOut.Close()

	m := recvMessage(t, s)
	if _, ok := m.(Crash); !ok {
		t.Fatalf("expected Crash, got %T", m)
	}
}

func TestSessionPendingLog(t *testing.T) {
	s, _ := testSession(t)

	id1, err := s.SendRequest(InitializeRequest("clangd", "file:///tmp"), InitializationRequest, "")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	id2, err := s.SendRequest(SemanticTokensRequest("file:///a.cpp"), SemanticTokenRequest, "file:///a.cpp")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if id2 != id1+1 {
		t.Errorf("ids not monotonic: %d then %d", id1, id2)
	}

	// Reconcile out of order.
	p, ok := s.TakePending(id2)
	if !ok || p.Kind != SemanticTokenRequest || p.URI != "file:///a.cpp" {
		t.Errorf("TakePending(%d) = %+v, %v", id2, p, ok)
	}
	p, ok = s.TakePending(id1)
	if !ok || p.Kind != InitializationRequest {
		t.Errorf("TakePending(%d) = %+v, %v", id1, p, ok)
	}
	if _, ok = s.TakePending(id1); ok {
		t.Error("a pending record must be taken only once")
	}
}

func TestSessionReadyAfterInitializeResponse(t *testing.T) {
	s, serverOut := testSession(t)
	server := NewTransport(strings.NewReader(""), serverOut)

	id, err := s.SendRequest(InitializeRequest("clangd", ""), InitializationRequest, "")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	go server.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{}}}`))
	recvMessage(t, s)

	if s.State() != StateReady {
		t.Errorf("state %v, want ready", s.State())
	}
	if _, ok := s.TakePending(id); !ok {
		t.Error("initialize stays pending until the host reconciles it")
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	s, _ := testSession(t)
	s.mu.Lock()
	s.state = StateTerminated
	s.mu.Unlock()

	if _, err := s.SendRequest([]byte(`{}`), SemanticTokenRequest, ""); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("SendRequest after close: %v", err)
	}
	if err := s.SendNotification([]byte(`{}`)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("SendNotification after close: %v", err)
	}
}
