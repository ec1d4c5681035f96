package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"oneonone/internal/metrics"
	"oneonone/internal/models"
	"oneonone/internal/session"
	"oneonone/internal/store"
	"oneonone/internal/utils"
)

// Content updates above this many characters are rejected with an error
// frame and never reach the buffer or the peer.
const maxContentChars = 500_000

// maxFrameBytes caps a single inbound websocket message at the transport.
// A maximal valid content update encodes to well under this even with every
// rune JSON-escaped; anything larger is cut off before it is buffered.
const maxFrameBytes = 8 << 20

type Handlers struct {
	log       *zap.Logger
	registry  *session.Registry
	sessions  *store.SessionRepository
	jwtSecret []byte
	upgrader  websocket.Upgrader
}

func NewHandlers(log *zap.Logger, registry *session.Registry, sessions *store.SessionRepository, jwtSecret []byte) *Handlers {
	return &Handlers{
		log:       log,
		registry:  registry,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// Presence reports role connectivity for a live room.
func (h *Handlers) Presence(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	room, ok := h.registry.Get(sessionID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	manager, employee := room.Presence()
	writeJSON(w, map[string]any{
		"sessionId":         sessionID,
		"managerConnected":  manager,
		"employeeConnected": employee,
	})
}

/*** Notes WebSocket: admission, slot assignment, frame dispatch ***/

// NotesWS admits a socket into a session room. The token travels in the
// Authorization header of the upgrade request, never in a frame body, and a
// refusal happens before the upgrade.
func (h *Handlers) NotesWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	token, err := utils.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	claims, err := utils.ValidateSessionToken(token, h.jwtSecret)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}
	if claims.SessionID != sessionID {
		http.Error(w, "token not issued for this session", http.StatusForbidden)
		return
	}

	rec, err := h.sessions.GetBySessionID(sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("session lookup failed", zap.String("sessionId", sessionID), zap.Error(err))
		http.Error(w, "session lookup failed", http.StatusInternalServerError)
		return
	}

	var role models.Role
	switch claims.UserID {
	case rec.ManagerID:
		role = models.RoleManager
	case rec.EmployeeID:
		role = models.RoleEmployee
	default:
		http.Error(w, "not a participant of this session", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	client := session.NewClient(conn, role, claims.UserID)
	room := h.registry.Join(r.Context(), rec, client)
	metrics.ConnectionOpened(string(role))
	h.log.Info("participant connected",
		zap.String("sessionId", sessionID),
		zap.String("userId", claims.UserID),
		zap.String("role", string(role)))

	defer func() {
		metrics.ConnectionClosed(string(role))
		if removed, remaining := room.Detach(client); removed && remaining == 0 {
			// request context is gone by now; the final flush must still run.
			// The idle re-check keeps a reconnect that slipped in between the
			// detach and this call out of harm's way.
			h.registry.CleanupIfIdle(context.Background(), sessionID)
		}
	}()

	// Event loop
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.dispatch(room, client, raw)
	}
}

// dispatch applies one inbound frame. Unknown types are ignored; malformed
// frames answer the sender without closing the socket; advisory toggles that
// fail validation are dropped silently.
func (h *Handlers) dispatch(room *session.Room, sender *session.Client, raw []byte) {
	var envelope models.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		sender.Send(models.NewError("malformed frame"))
		return
	}
	metrics.FrameProcessed(envelope.Type)

	switch envelope.Type {
	case models.TypeContentUpdate:
		if sender.Role != models.RoleManager {
			sender.Send(models.NewError("only the manager can edit notes"))
			return
		}
		var update models.ContentUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			sender.Send(models.NewError("malformed frame"))
			return
		}
		if utf8.RuneCountInString(update.Content) > maxContentChars {
			sender.Send(models.NewError("content exceeds maximum size"))
			return
		}
		room.UpdateContent(update.Content)

	case models.TypeRequestEdit:
		room.RelayTo(models.RoleManager, models.NewEditRequest(sender.UserID))

	case models.TypeAgendaToggle:
		var toggle models.AgendaToggle
		if err := json.Unmarshal(raw, &toggle); err != nil || toggle.Covered == nil || !isUUIDv4(toggle.ItemID) {
			return
		}
		room.RelayOpposite(sender.Role, models.NewAgendaUpdated(toggle.ItemID, *toggle.Covered))

	case models.TypeActionToggle:
		var toggle models.ActionToggle
		if err := json.Unmarshal(raw, &toggle); err != nil || toggle.Completed == nil || !isUUIDv4(toggle.ItemID) {
			return
		}
		room.RelayOpposite(sender.Role, models.NewActionUpdated(toggle.ItemID, *toggle.Completed))

	case models.TypePing:
		sender.Send(models.NewPong())
	}
}

// isUUIDv4 accepts only the canonical 36-character textual form.
func isUUIDv4(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Version() == 4
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
