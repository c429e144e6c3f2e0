package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/uninav/navcore/pkg/mutation"
	"github.com/uninav/navcore/pkg/remote"
	"github.com/uninav/navcore/pkg/suggest"
)

// maxQueryLength bounds incoming queries before the engine sees them.
const maxQueryLength = 120

// Server handles the IPC for suggestions and cache mutations.
type Server struct {
	engine   *suggest.Engine
	executor *mutation.Executor
	opts     suggest.Options
	decoder  *msgpack.Decoder
	encoder  *msgpack.Encoder
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(engine *suggest.Engine, executor *mutation.Executor, opts suggest.Options) *Server {
	return NewServerIO(engine, executor, opts, os.Stdin, os.Stdout)
}

// NewServerIO creates a server over arbitrary streams, mainly for tests.
func NewServerIO(engine *suggest.Engine, executor *mutation.Executor, opts suggest.Options, r io.Reader, w io.Writer) *Server {
	return &Server{
		engine:   engine,
		executor: executor,
		opts:     opts,
		decoder:  msgpack.NewDecoder(r),
		encoder:  msgpack.NewEncoder(w),
	}
}

// Start begins listening for IPC requests. It returns nil on clean EOF.
func (s *Server) Start() error {
	log.Debug("Starting server.")

	// Signal that the server is ready
	s.send(StatusResponse{Status: "ready"})

	for {
		var request Request
		if err := s.decoder.Decode(&request); err != nil {
			if err == io.EOF {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(request)
	}
}

// handleRequest dispatches one decoded request.
func (s *Server) handleRequest(request Request) {
	switch request.Command {
	case "suggest":
		s.handleSuggest(request)
	case "complete":
		s.handleComplete(request)
	case "history_save":
		s.handleHistorySave(request)
	case "history_clear":
		s.engine.ClearHistory()
		s.send(StatusResponse{ID: request.ID, Status: "ok"})
	case "mutate":
		s.handleMutate(request)
	case "health":
		s.send(StatusResponse{ID: request.ID, Status: "ok"})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown command: %s", request.Command), 400)
	}
}

// handleSuggest runs the full ranked suggestion pass.
func (s *Server) handleSuggest(request Request) {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		s.sendError(request.ID, "Missing 'q' parameter", 400)
		log.Debug("Query is empty in request")
		return
	}
	if len(query) > maxQueryLength {
		s.sendError(request.ID, fmt.Sprintf("Query exceeds maximum length of %d characters", maxQueryLength), 400)
		log.Debug("Query is too long in request")
		return
	}

	opts := s.opts
	start := time.Now()
	candidates := s.engine.Suggestions(query, opts)
	elapsed := time.Since(start)

	items := make([]SuggestionItem, len(candidates))
	for i, c := range candidates {
		items[i] = SuggestionItem{
			Text:       c.Text,
			Source:     string(c.Source),
			Confidence: c.Confidence,
		}
	}
	limit := request.Limit
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	s.send(SuggestResponse{
		ID:          request.ID,
		Suggestions: items,
		Count:       len(items),
		TimeTaken:   elapsed.Milliseconds(),
	})
}

// handleComplete answers a tab-completion request. No candidate is not an
// error; the reply just reports nothing accepted.
func (s *Server) handleComplete(request Request) {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		s.sendError(request.ID, "Missing 'q' parameter", 400)
		return
	}

	text, ok := s.engine.TabCompletion(query)
	s.send(CompleteResponse{ID: request.ID, Text: text, Accepted: ok})
}

// handleHistorySave records a submitted search.
func (s *Server) handleHistorySave(request Request) {
	if strings.TrimSpace(request.Query) == "" {
		s.sendError(request.ID, "Missing 'q' parameter", 400)
		return
	}
	s.engine.SaveToHistory(request.Query)
	s.send(StatusResponse{ID: request.ID, Status: "ok"})
}

// handleMutate runs one cache mutation and replies after it settles, so the
// client can trust a "done" status as backend-confirmed.
func (s *Server) handleMutate(request Request) {
	req, err := buildMutation(request)
	if err != nil {
		s.sendError(request.ID, err.Error(), 400)
		return
	}

	done, err := s.executor.Execute(context.Background(), req)
	if err != nil {
		s.sendError(request.ID, err.Error(), 400)
		return
	}

	outcome := <-done
	resp := MutateResponse{ID: request.ID, Status: "done", TempID: outcome.TempID}
	if outcome.Err != nil {
		resp.Status = "error"
		resp.Error = outcome.Err.Error()
	}
	if outcome.Confirmed != nil {
		resp.ConfirmedID = outcome.Confirmed.ID
	}
	s.send(resp)
}

// buildMutation maps wire fields onto an executor request.
func buildMutation(request Request) (mutation.Request, error) {
	req := mutation.Request{
		Target:       mutation.Target(request.Target),
		Op:           mutation.Op(request.Op),
		ID:           request.TargetID,
		DepartmentID: request.DepartmentID,
	}
	if req.Op == mutation.OpCreate {
		if request.MaterialID == "" {
			return mutation.Request{}, fmt.Errorf("create requires 'mid'")
		}
		req.Create = &remote.CreateBookmarkRequest{
			MaterialID: request.MaterialID,
			Label:      request.Label,
		}
	}
	return req, nil
}

// send encodes the response and flushes it to the client.
func (s *Server) send(response any) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error status response.
func (s *Server) sendError(id, message string, code int) {
	s.send(StatusResponse{
		ID:     id,
		Status: "error",
		Error:  message,
		Code:   code,
	})
}
