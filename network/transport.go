package network

import (
	"bufio"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultMaxLine bounds a single inbound line
const DefaultMaxLine = 4 << 20

// Transport moves whole messages (one JSON document each) over a connection
type Transport interface {
	ReadLine() ([]byte, error)
	WriteLine(line []byte) error
	Close() error
	RemoteAddr() string
}

// lineTransport frames messages with '\n' over a stream socket
type lineTransport struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

// NewLineTransport wraps a stream connection in newline framing.
// maxLine <= 0 selects DefaultMaxLine.
func NewLineTransport(conn net.Conn, maxLine int) Transport {
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &lineTransport{conn: conn, scanner: scanner}
}

func (t *lineTransport) ReadLine() ([]byte, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	line := make([]byte, len(t.scanner.Bytes()))
	copy(line, t.scanner.Bytes())
	return line, nil
}

func (t *lineTransport) WriteLine(line []byte) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	_, err := t.conn.Write(buf)
	return err
}

func (t *lineTransport) Close() error {
	return t.conn.Close()
}

func (t *lineTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

// wsTransport carries one message per text frame
type wsTransport struct {
	ws *websocket.Conn
}

// NewWSTransport wraps an upgraded WebSocket connection
func NewWSTransport(ws *websocket.Conn) Transport {
	return &wsTransport{ws: ws}
}

func (t *wsTransport) ReadLine() ([]byte, error) {
	_, message, err := t.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, err
	}
	return message, nil
}

func (t *wsTransport) WriteLine(line []byte) error {
	return t.ws.WriteMessage(websocket.TextMessage, line)
}

func (t *wsTransport) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = t.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return t.ws.Close()
}

func (t *wsTransport) RemoteAddr() string {
	return t.ws.RemoteAddr().String()
}
