// Package rpc implements the line-delimited JSON-RPC transport between the
// plugin and the Tabularis host.
//
// Each inbound line is one request object {id, method, params}; each
// outbound line is a JSON-RPC 2.0 response. The transport is deliberately
// thin: it parses the envelope, delegates to a Handler, and maps failures to
// the protocol's error codes. One request is fully handled before the next
// line is read.
package rpc

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// JSON-RPC 2.0 error codes used by the plugin.
const (
	// CodeParseError reports malformed request JSON.
	CodeParseError = -32700
	// CodeMethodNotFound reports an unrecognized method.
	CodeMethodNotFound = -32601
	// CodeInternalError reports any other handler failure.
	CodeInternalError = -32603
)

// ErrMethodNotFound is returned by handlers for unrecognized methods so the
// transport can answer with CodeMethodNotFound instead of an internal error.
var ErrMethodNotFound = errors.New("method not found")

// maxLineSize bounds a single request line (queries can be long).
const maxLineSize = 4 * 1024 * 1024

// Request is one inbound JSON-RPC request.
type Request struct {
	ID     any    `json:"id"`
	Method string `json:"method"`
	Params Params `json:"params"`
}

// Params carries the request arguments. The source directory arrives nested
// one level down, under params.params.database; the remaining fields sit
// directly on params, matching the host's wire shape.
type Params struct {
	Params   ConnectionParams `json:"params"`
	Table    string           `json:"table"`
	Tables   []string         `json:"tables"`
	Query    string           `json:"query"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ConnectionParams identifies the data source.
type ConnectionParams struct {
	Database string `json:"database"`
}

// Error is the JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type successResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result"`
}

type errorResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Error   Error  `json:"error"`
}

// Handler executes one method and returns its result. Returning an error
// wrapping ErrMethodNotFound maps to CodeMethodNotFound; any other error
// maps to CodeInternalError with the error's message.
type Handler func(method string, params Params) (any, error)

// Server reads requests line by line and writes one response line each.
type Server struct {
	scanner *bufio.Scanner
	out     *bufio.Writer
	handle  Handler
	logger  *logrus.Logger
}

// NewServer creates a server reading from in and writing to out.
func NewServer(in io.Reader, out io.Writer, handle Handler, logger *logrus.Logger) *Server {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Server{
		scanner: scanner,
		out:     bufio.NewWriter(out),
		handle:  handle,
		logger:  logger,
	}
}

// Serve processes requests until the input stream ends. Requests are handled
// strictly one at a time; a long-running query blocks subsequent requests.
func (s *Server) Serve() error {
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if writeErr := s.respondError(nil, CodeParseError, err.Error()); writeErr != nil {
				return writeErr
			}
			continue
		}

		if err := s.dispatch(req); err != nil {
			return err
		}
	}
	return s.scanner.Err()
}

func (s *Server) dispatch(req Request) error {
	result, err := s.handle(req.Method, req.Params)
	if err == nil {
		return s.respond(successResponse{JSONRPC: "2.0", ID: req.ID, Result: result})
	}

	if errors.Is(err, ErrMethodNotFound) {
		return s.respondError(req.ID, CodeMethodNotFound, err.Error())
	}

	s.logger.WithField("method", req.Method).Error(err.Error())
	return s.respondError(req.ID, CodeInternalError, err.Error())
}

func (s *Server) respondError(id any, code int, message string) error {
	return s.respond(errorResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   Error{Code: code, Message: message},
	})
}

// respond writes one response line and flushes it so the host sees the
// answer immediately.
func (s *Server) respond(resp any) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		return err
	}
	return s.out.Flush()
}
