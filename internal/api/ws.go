package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/nephroline/aftercare/internal/identity"
	"github.com/nephroline/aftercare/internal/router"
)

// WebSocketHandler serves the chat conversation over a WebSocket. Each text
// frame carries one user message; the reply frame is the full turn result.
type WebSocketHandler struct {
	engine        router.ConversationEngine
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket chat handler.
func NewWebSocketHandler(engine router.ConversationEngine, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		engine:        engine,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsChatMessage is one inbound chat frame.
type wsChatMessage struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	defaultSession := identity.SessionIDFromContext(r.Context())
	slog.Info("WebSocket chat connection", "user_id", userID, "session_id", defaultSession, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "conversation ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	ctx := r.Context()
	for {
		msgType, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				return
			}
			slog.Debug("WebSocket read ended", "error", err, "user_id", userID)
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var in wsChatMessage
		if err := json.Unmarshal(data, &in); err != nil || strings.TrimSpace(in.Message) == "" {
			if writeErr := h.writeJSON(ctx, ws, map[string]string{"error": "invalid chat message"}); writeErr != nil {
				return
			}
			continue
		}

		sessionID := defaultSession
		if in.SessionID != "" {
			sessionID = identity.SanitizeSessionID(in.SessionID)
		}

		result := h.engine.HandleTurn(ctx, sessionID, in.Message)
		if err := h.writeJSON(ctx, ws, result); err != nil {
			slog.Debug("WebSocket write failed", "error", err, "user_id", userID)
			return
		}
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return h.allowedOrigin != "" && strings.HasPrefix(origin, h.allowedOrigin)
}
