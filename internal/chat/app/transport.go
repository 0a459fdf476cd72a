package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/torcida/fanhub/internal/storage"
	"golang.org/x/net/websocket"
)

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type authenticatePayload struct {
	Token string `json:"token"`
}

type submitPayload struct {
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`
	Message    string `json:"message"`
	IsBot      bool   `json:"is_bot"`
}

type wireMessage struct {
	ID         int64  `json:"id"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`
	Message    string `json:"message"`
	IsBot      bool   `json:"is_bot"`
	CreatedAt  string `json:"created_at"`
}

type historyPayload struct {
	Messages []wireMessage `json:"messages"`
}

type messageEnvelope struct {
	Message wireMessage `json:"message"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHandler creates the chat HTTP routes over the given collaborators.
func NewHandler(deps Deps) http.Handler {
	hub := newHub()
	mux := http.NewServeMux()

	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		handleProfile(w, r, deps)
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub, deps)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

func handleWSConn(conn *websocket.Conn, hub *hub, deps Deps) {
	defer func() {
		_ = conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	peer := newWSPeer(json.NewEncoder(conn))
	session := newWSSession(peer)
	defer hub.remove(peer)

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(peer, "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(peer, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(peer, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		switch frame.Type {
		case "authenticate":
			handleAuthenticateFrame(session, hub, deps, frame)
		case "submit-message":
			handleSubmitFrame(session, hub, deps, frame)
		default:
			_ = writeWSError(peer, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func handleAuthenticateFrame(session *wsSession, hub *hub, deps Deps, frame wsFrame) {
	var payload authenticatePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, "INVALID_ARGUMENT", "invalid authenticate payload")
		return
	}

	// Authentication is bounded; nothing else in the ingest path carries a
	// deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	principalID, err := deps.Authorizer.Authenticate(ctx, payload.Token)
	if err != nil {
		log.Printf("chat: authentication failed: %v", err)
		_ = writeWSError(session.peer, "UNAUTHENTICATED", "authentication failed")
		return
	}

	principal, err := deps.Principals.GetPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("chat: authenticated principal %d has no record", principalID)
			_ = writeWSError(session.peer, "UNAUTHENTICATED", "unknown principal")
			return
		}
		log.Printf("chat: load principal %d: %v", principalID, err)
		_ = writeWSError(session.peer, "UNAVAILABLE", "principal lookup unavailable")
		return
	}

	session.bind(principal.ID)
	hub.add(session.peer, principal.ID)

	history, err := deps.Messages.RecentMessages(ctx, historySnapshotLimit)
	if err != nil {
		log.Printf("chat: history snapshot for principal %d: %v", principal.ID, err)
		_ = writeWSError(session.peer, "UNAVAILABLE", "chat history unavailable")
		return
	}

	messages := make([]wireMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, toWireMessage(msg))
	}
	_ = session.peer.writeFrame(wsFrame{
		Type:    "chat-history",
		Payload: mustJSON(historyPayload{Messages: messages}),
	})
}

func handleSubmitFrame(session *wsSession, hub *hub, deps Deps, frame wsFrame) {
	var payload submitPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, "INVALID_ARGUMENT", "invalid submit payload")
		return
	}

	principalID, bound := session.principal()
	if !bound {
		_ = writeWSError(session.peer, "UNAUTHENTICATED", "must authenticate before sending")
		return
	}
	if payload.IsBot {
		_ = writeWSError(session.peer, "INVALID_ARGUMENT", "bot messages cannot be submitted")
		return
	}
	if payload.AuthorID != 0 && payload.AuthorID != principalID {
		_ = writeWSError(session.peer, "INVALID_ARGUMENT", "author does not match authenticated principal")
		return
	}

	body := strings.TrimSpace(payload.Message)
	if body == "" {
		_ = writeWSError(session.peer, "INVALID_ARGUMENT", "message is required")
		return
	}
	if utf8.RuneCountInString(body) > maxMessageBodyRunes {
		_ = writeWSError(session.peer, "INVALID_ARGUMENT", "message must be at most 2000 characters")
		return
	}

	// An accepted submission outlives its connection: a disconnect mid-pipeline
	// must not abort persistence or the broadcast to remaining peers.
	ctx := context.Background()

	msg, err := deps.Messages.AppendMessage(ctx, principalID, body, false)
	if err != nil {
		log.Printf("chat: persist message from principal %d: %v", principalID, err)
		_ = writeWSError(session.peer, "UNAVAILABLE", "message could not be saved")
		return
	}
	hub.broadcast(wsFrame{
		Type:    "new-message",
		Payload: mustJSON(messageEnvelope{Message: toWireMessage(msg)}),
	})

	// Reward failures never block the reply; a missing principal is logged
	// and dropped.
	if err := deps.Engine.MessageSent(ctx, principalID); err != nil {
		log.Printf("chat: reward message from principal %d: %v", principalID, err)
	}

	reply := deps.Responder.Respond(ctx, body, principalID)
	botMsg, err := deps.Messages.AppendMessage(ctx, storage.BotPrincipalID, reply, true)
	if err != nil {
		log.Printf("chat: persist bot reply to principal %d: %v", principalID, err)
		_ = writeWSError(session.peer, "UNAVAILABLE", "bot reply could not be saved")
		return
	}
	hub.broadcast(wsFrame{
		Type:    "new-message",
		Payload: mustJSON(messageEnvelope{Message: toWireMessage(botMsg)}),
	})
}

func toWireMessage(msg storage.ChatMessage) wireMessage {
	return wireMessage{
		ID:         msg.ID,
		AuthorID:   msg.AuthorID,
		AuthorName: msg.AuthorName,
		Message:    msg.Body,
		IsBot:      msg.IsBot,
		CreatedAt:  msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeWSError(peer *wsPeer, code string, message string) error {
	return peer.writeFrame(wsFrame{
		Type: "error",
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:    code,
				Message: message,
			},
		}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}
