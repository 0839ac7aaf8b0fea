package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/enigma2-bridge/internal/bridge"
	"github.com/nerrad567/enigma2-bridge/internal/item"
	"github.com/nerrad567/enigma2-bridge/internal/openwebif"
)

// SourceAPI tags item changes and dispatches that originate from HTTP
// callers. It aliases the shared history source tag.
const SourceAPI = item.HistorySourceAPI

// remoteRequest is the payload for POST /remote.
type remoteRequest struct {
	Command int `json:"command"`
}

// zapRequest is the payload for POST /zap.
type zapRequest struct {
	SRef string `json:"sref"`
}

// messageRequest is the payload for POST /message.
type messageRequest struct {
	Text    string `json:"text"`
	Type    int    `json:"type"`
	Timeout int    `json:"timeout"`
}

// handleRemote dispatches an ad-hoc remote control command to the receiver.
// POST /api/v1/remote {"command": 105}
func (s *Server) handleRemote(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "receiver bridge is not available")
		return
	}

	var req remoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Command <= 0 {
		writeBadRequest(w, "command must be a positive remote control code")
		return
	}

	s.dispatch(w, r, bridge.CommandBinding{Command: req.Command})
}

// handleZap switches the receiver to another service.
// POST /api/v1/zap {"sref": "1:0:19:283D:3FB:1:C00000:0:0:0:"}
func (s *Server) handleZap(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "receiver bridge is not available")
		return
	}

	var req zapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.SRef == "" {
		writeBadRequest(w, "sref is required")
		return
	}

	s.dispatch(w, r, bridge.CommandBinding{SRef: req.SRef})
}

// handleNamedCommand dispatches a command binding declared in the
// configuration file, addressed by its item identifier.
// POST /api/v1/commands/{id}
func (s *Server) handleNamedCommand(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "receiver bridge is not available")
		return
	}

	id := chi.URLParam(r, "id")
	cmd, ok := s.commands[id]
	if !ok {
		writeNotFound(w, "command not found: "+id)
		return
	}

	s.dispatch(w, r, cmd)
}

// dispatch hands a command binding to the bridge and maps the outcome to
// an HTTP response.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd bridge.CommandBinding) {
	if err := s.bridge.Dispatch(r.Context(), cmd, SourceAPI); err != nil {
		if errors.Is(err, bridge.ErrInvalidCommand) {
			writeBadRequest(w, "command binding is empty")
			return
		}
		s.logger.Error("command dispatch failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeInternal, "receiver did not accept the command")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"dispatched": true})
}

// handleSendMessage displays an on-screen message on the receiver.
// POST /api/v1/message {"text": "Dinner!", "type": 1, "timeout": 10}
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "receiver bridge is not available")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeBadRequest(w, "text is required")
		return
	}
	if req.Type < int(openwebif.MessageYesNo) || req.Type > int(openwebif.MessageAttention) {
		writeBadRequest(w, "type must be 0 (yes/no), 1 (info), 2 (message) or 3 (attention)")
		return
	}

	ack, err := s.bridge.SendMessage(r.Context(), req.Text, openwebif.MessageType(req.Type), req.Timeout)
	if err != nil {
		s.logger.Error("send message failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeInternal, "receiver did not accept the message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   ack.OK,
		"text": ack.Text,
	})
}

// handleMessageAnswer polls for the answer to a previously sent yes/no
// message.
// GET /api/v1/message/answer
func (s *Server) handleMessageAnswer(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "receiver bridge is not available")
		return
	}

	answer, ok, err := s.bridge.MessageAnswer(r.Context())
	if err != nil {
		s.logger.Error("message answer poll failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeInternal, "receiver did not return an answer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answered": ok,
		"answer":   answer,
	})
}

// handleAudioTracks enumerates the audio tracks of the current service.
// GET /api/v1/audiotracks
func (s *Server) handleAudioTracks(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "receiver bridge is not available")
		return
	}

	tracks, err := s.bridge.AudioTracks(r.Context())
	if err != nil {
		s.logger.Error("audio track query failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeInternal, "receiver did not return audio tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tracks": tracks,
		"count":  len(tracks),
	})
}
