package match

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/h2h-trivia/internal/auth"
	"github.com/gokatarajesh/h2h-trivia/internal/logging"
	"github.com/gokatarajesh/h2h-trivia/internal/matchmaking"
	"github.com/gokatarajesh/h2h-trivia/internal/player"
	httperrors "github.com/gokatarajesh/h2h-trivia/pkg/http/errors"
	ws "github.com/gokatarajesh/h2h-trivia/pkg/http/ws"
)

const defaultGuestName = "Guest"

// HandlerOptions configures the websocket handler.
type HandlerOptions struct {
	Upgrader      *websocket.Upgrader
	Authenticator *auth.Authenticator
	// PublicBaseURL prefixes room join links.
	PublicBaseURL string
}

// Handler manages WebSocket connections and routes pairing and match
// messages.
type Handler struct {
	engine   *Engine
	registry *matchmaking.Registry
	hub      *ws.Hub
	validate *validator.Validate
	opts     HandlerOptions
	baseCtx  context.Context
	logger   zerolog.Logger
}

// NewHandler creates a match WebSocket handler. baseCtx bounds the work
// started on behalf of connections, such as match creation.
func NewHandler(baseCtx context.Context, engine *Engine, registry *matchmaking.Registry, hub *ws.Hub, opts HandlerOptions, logger zerolog.Logger) *Handler {
	if opts.Upgrader == nil {
		opts.Upgrader = &websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	}
	return &Handler{
		engine:   engine,
		registry: registry,
		hub:      hub,
		validate: validator.New(),
		opts:     opts,
		baseCtx:  baseCtx,
		logger:   logger.With().Str("component", "match_ws").Logger(),
	}
}

// session is the per-connection state the handler keeps.
type session struct {
	connID   string
	identity auth.Identity
	logger   zerolog.Logger
}

// user merges the verified identity with the profile the client announced.
func (s *session) user(p ws.UserPayload) player.User {
	u := player.User{
		DisplayName: p.Name,
		AvatarURL:   p.AvatarURL,
		ClubID:      p.ClubID,
	}
	if s.identity.Authenticated {
		u.ID = s.identity.UserID
		u.IsGuest = s.identity.IsGuest
		if s.identity.DisplayName != "" {
			u.DisplayName = s.identity.DisplayName
		}
		if u.ClubID == "" {
			u.ClubID = s.identity.ClubID
		}
	} else {
		u.ID = "guest-" + s.connID
		u.IsGuest = true
	}
	if u.DisplayName == "" {
		u.DisplayName = defaultGuestName
	}
	return u
}

// HandleConnection serves an upgraded connection until it closes.
func (h *Handler) HandleConnection(conn *websocket.Conn, identity auth.Identity) {
	connID := uuid.NewString()
	logger := h.logger.With().Str("conn_id", connID).Logger()
	wsConn := ws.NewConnection(conn, logger)
	go wsConn.WritePump()

	sess := h.openSession(connID, identity, wsConn, logger)

	ctx := logging.IntoContext(h.baseCtx, logger)
	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(ctx, sess, msg)
	})

	h.closeSession(sess)
}

func (h *Handler) openSession(connID string, identity auth.Identity, sender ws.Sender, logger zerolog.Logger) *session {
	h.hub.RegisterConnection(connID, sender)
	sess := &session{connID: connID, identity: identity, logger: logger}

	h.reply(sess, ws.Message{}, ws.TypeConnected, ws.ConnectedPayload{
		ConnectionID: connID,
		UserID:       sess.user(ws.UserPayload{}).ID,
		IsGuest:      !identity.Authenticated || identity.IsGuest,
	})
	logger.Info().Bool("authenticated", identity.Authenticated).Msg("connection opened")
	return sess
}

// closeSession runs the disconnect path: the connection leaves the hub, the
// queue, any room it hosts and any match it plays.
func (h *Handler) closeSession(sess *session) {
	h.hub.UnregisterConnection(sess.connID)
	h.registry.RemoveFromQueue(sess.connID)
	stopped := h.engine.HandleDisconnect(sess.connID)
	sess.logger.Info().Bool("match_stopped", stopped).Msg("connection closed")
}

// handleMessage routes incoming WebSocket messages. Malformed or unexpected
// messages are logged and dropped.
func (h *Handler) handleMessage(ctx context.Context, sess *session, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeJoinQueue:
		return h.handleJoinQueue(ctx, sess, msg)
	case ws.TypeCreatePrivateRoom:
		return h.handleCreateRoom(ctx, sess, msg)
	case ws.TypeJoinPrivateRoom:
		return h.handleJoinRoom(ctx, sess, msg)
	case ws.TypeSubmitAnswer:
		return h.handleSubmitAnswer(ctx, sess, msg)
	case ws.TypeCancelWait:
		h.registry.RemoveFromQueue(sess.connID)
		return nil
	default:
		sess.logger.Debug().Str("type", msg.Type).Msg("unknown message type")
		return nil
	}
}

func (h *Handler) handleJoinQueue(ctx context.Context, sess *session, msg ws.Message) error {
	var req ws.JoinQueuePayload
	if err := h.decode(ctx, msg.Payload, &req); err != nil {
		sess.logger.Debug().Err(err).Msg("invalid join_queue payload")
		return nil
	}
	if _, busy := h.engine.InMatch(sess.connID); busy {
		sess.logger.Debug().Msg("join_queue while in a match")
		return nil
	}

	h.registry.AddToQueue(sess.connID, sess.user(req.User))
	if pair, ok := h.registry.TryPair(); ok {
		go h.startMatch(pair)
	}
	if pos := h.registry.Position(sess.connID); pos > 0 {
		h.reply(sess, msg, ws.TypeQueued, ws.QueuedPayload{Position: pos})
	}
	return nil
}

func (h *Handler) handleCreateRoom(ctx context.Context, sess *session, msg ws.Message) error {
	var req ws.CreatePrivateRoomPayload
	if err := h.decode(ctx, msg.Payload, &req); err != nil {
		sess.logger.Debug().Err(err).Msg("invalid create_private_room payload")
		h.reply(sess, msg, ws.TypeRoomCreated, ws.RoomCreatedPayload{
			Error: "Invalid room request",
			Code:  httperrors.ErrCodeInvalidPayload,
		})
		return nil
	}
	if _, busy := h.engine.InMatch(sess.connID); busy {
		h.reply(sess, msg, ws.TypeRoomCreated, ws.RoomCreatedPayload{
			Error: "Already playing a match",
			Code:  httperrors.ErrCodeAlreadyInMatch,
		})
		return nil
	}

	room, err := h.registry.CreateRoom(sess.connID, sess.user(req.User))
	if err != nil {
		sess.logger.Error().Err(err).Msg("failed to create room")
		h.reply(sess, msg, ws.TypeRoomCreated, ws.RoomCreatedPayload{
			Error: "Could not create room",
			Code:  httperrors.ErrCodeRoomCreationFailed,
		})
		return nil
	}

	h.reply(sess, msg, ws.TypeRoomCreated, ws.RoomCreatedPayload{
		RoomCode:  room.Code,
		ExpiresAt: room.ExpiresAt.UnixMilli(),
		JoinURL:   JoinURL(h.opts.PublicBaseURL, room.Code),
	})
	return nil
}

func (h *Handler) handleJoinRoom(ctx context.Context, sess *session, msg ws.Message) error {
	var req ws.JoinPrivateRoomPayload
	err := json.Unmarshal(msg.Payload, &req)
	if err == nil {
		req.RoomCode = matchmaking.NormalizeCode(req.RoomCode)
		err = h.validate.StructCtx(ctx, &req)
	}
	if err != nil {
		sess.logger.Debug().Err(err).Msg("invalid join_private_room payload")
		h.replyJoin(sess, msg, "Invalid room code", httperrors.ErrCodeInvalidPayload)
		return nil
	}
	if _, busy := h.engine.InMatch(sess.connID); busy {
		h.replyJoin(sess, msg, "Already playing a match", httperrors.ErrCodeAlreadyInMatch)
		return nil
	}

	pair, err := h.registry.JoinRoom(req.RoomCode, sess.connID, sess.user(req.User))
	switch {
	case errors.Is(err, matchmaking.ErrRoomNotFound):
		h.replyJoin(sess, msg, "Room not found", httperrors.ErrCodeRoomNotFound)
		return nil
	case errors.Is(err, matchmaking.ErrSelfJoin):
		h.replyJoin(sess, msg, "Cannot join your own room", httperrors.ErrCodeSelfJoin)
		return nil
	case err != nil:
		return err
	}

	h.reply(sess, msg, ws.TypeJoinResult, ws.JoinResultPayload{Success: true})
	go h.startMatch(pair)
	return nil
}

func (h *Handler) handleSubmitAnswer(ctx context.Context, sess *session, msg ws.Message) error {
	var req ws.SubmitAnswerPayload
	if err := h.decode(ctx, msg.Payload, &req); err != nil {
		sess.logger.Debug().Err(err).Msg("invalid submit_answer payload")
		return nil
	}
	matchID, err := uuid.Parse(req.MatchID)
	if err != nil {
		return nil
	}

	if _, err := h.engine.SubmitAnswer(matchID, sess.connID, *req.OptionIndex); err != nil {
		sess.logger.Debug().Err(err).Str("match_id", req.MatchID).Msg("answer ignored")
	}
	return nil
}

func (h *Handler) startMatch(pair matchmaking.Pair) {
	id, err := h.engine.CreateMatch(h.baseCtx, pair.First, pair.Second)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("first", pair.First.ConnID).
			Str("second", pair.Second.ConnID).
			Msg("failed to start match")
		return
	}
	h.logger.Debug().Str("match_id", id.String()).Msg("match started")
}

// decode unmarshals and validates a payload. An empty payload decodes to
// the zero value.
func (h *Handler) decode(ctx context.Context, raw json.RawMessage, dst any) error {
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, dst); err != nil {
			return err
		}
	}
	return h.validate.StructCtx(ctx, dst)
}

func (h *Handler) replyJoin(sess *session, req ws.Message, message, code string) {
	h.reply(sess, req, ws.TypeJoinResult, ws.JoinResultPayload{Error: message, Code: code})
}

func (h *Handler) reply(sess *session, req ws.Message, msgType string, payload any) {
	msg, err := ws.Reply(req, msgType, payload)
	if err != nil {
		sess.logger.Error().Err(err).Str("type", msgType).Msg("encode reply")
		return
	}
	if err := h.hub.SendTo(sess.connID, msg); err != nil {
		sess.logger.Debug().Err(err).Str("type", msgType).Msg("reply not delivered")
	}
}
