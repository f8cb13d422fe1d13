package lsp

import (
	"bufio"
	"io"
	"strconv"
	"sync"
)

// headerPrefix is the only header the protocol requires. The framing is
// bit-exact: "Content-Length: " + decimal byte length + "\r\n\r\n" + body.
const headerPrefix = "Content-Length: "

// maxHeaderDigits bounds the decimal length field while scanning.
const maxHeaderDigits = 10

// Transport frames JSON-RPC bodies over a byte stream. Reads are strictly
// sequential, one message at a time; writes are serialized by a mutex so
// concurrent senders cannot interleave frames.
type Transport struct {
	reader *bufio.Reader

	wmu    sync.Mutex
	writer io.Writer
}

// NewTransport wraps the given stream ends.
func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{
		reader: bufio.NewReaderSize(r, 64*1024),
		writer: w,
	}
}

// Write frames body and writes it in one call. Failures come back as a
// WriteError.
func (t *Transport) Write(body []byte) error {
	frame := make([]byte, 0, len(headerPrefix)+maxHeaderDigits+4+len(body))
	frame = append(frame, headerPrefix...)
	frame = strconv.AppendInt(frame, int64(len(body)), 10)
	frame = append(frame, '\r', '\n', '\r', '\n')
	frame = append(frame, body...)

	t.wmu.Lock()
	defer t.wmu.Unlock()
	if _, err := t.writer.Write(frame); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// Read consumes one framed message and returns its body. The caller owns
// the returned slice. A header that does not start with the expected
// prefix, or whose length field is malformed, is a FramingError.
func (t *Transport) Read() ([]byte, error) {
	head := make([]byte, len(headerPrefix))
	if _, err := io.ReadFull(t.reader, head); err != nil {
		return nil, err
	}
	if string(head) != headerPrefix {
		return nil, &FramingError{Header: string(head)}
	}

	// Decimal length terminated by the first \r.
	var digits []byte
	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == '\r' {
			break
		}
		if b < '0' || b > '9' || len(digits) >= maxHeaderDigits {
			return nil, &FramingError{Header: headerPrefix + string(digits) + string(b)}
		}
		digits = append(digits, b)
	}
	if len(digits) == 0 {
		return nil, &FramingError{Header: headerPrefix}
	}

	// The rest of the terminator: \n\r\n.
	var term [3]byte
	if _, err := io.ReadFull(t.reader, term[:]); err != nil {
		return nil, err
	}
	if term != [3]byte{'\n', '\r', '\n'} {
		return nil, &FramingError{Header: headerPrefix + string(digits) + string(term[:])}
	}

	length, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, &FramingError{Header: headerPrefix + string(digits)}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, err
	}
	return body, nil
}
