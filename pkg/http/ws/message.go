package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeJoinQueue         = "join_queue"
	TypeCreatePrivateRoom = "create_private_room"
	TypeJoinPrivateRoom   = "join_private_room"
	TypeSubmitAnswer      = "submit_answer"
	TypeCancelWait        = "cancel_wait"

	// Server -> Client
	TypeConnected            = "connected"
	TypeQueued               = "queued"
	TypeRoomCreated          = "room_created"
	TypeJoinResult           = "join_result"
	TypeMatchFound           = "match_found"
	TypeNewQuestion          = "new_question"
	TypeQuestionResult       = "question_result"
	TypeGameOver             = "game_over"
	TypeOpponentDisconnected = "opponent_disconnected"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage encodes payload into a typed envelope.
func NewMessage(msgType string, payload any) (Message, error) {
	msg := Message{Type: msgType}
	if payload == nil {
		msg.Payload = json.RawMessage(`{}`)
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// Reply is NewMessage echoing the request id of req.
func Reply(req Message, msgType string, payload any) (Message, error) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return Message{}, err
	}
	msg.RequestID = req.RequestID
	return msg, nil
}

// Client Messages (incoming)

// UserPayload is the profile a client announces when it starts waiting.
// Identity fields are never taken from the client.
type UserPayload struct {
	Name      string `json:"name" validate:"omitempty,max=40"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=512"`
	ClubID    string `json:"club_id" validate:"omitempty,max=64"`
}

type JoinQueuePayload struct {
	User UserPayload `json:"user"`
}

type CreatePrivateRoomPayload struct {
	User UserPayload `json:"user"`
}

type JoinPrivateRoomPayload struct {
	RoomCode string      `json:"room_code" validate:"required,alphanum,len=6"`
	User     UserPayload `json:"user"`
}

type SubmitAnswerPayload struct {
	MatchID     string `json:"match_id" validate:"required,uuid"`
	OptionIndex *int   `json:"option_index" validate:"required,min=0,max=3"`
}

// Server Messages (outgoing)

type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
	IsGuest      bool   `json:"is_guest"`
}

type QueuedPayload struct {
	Position int `json:"position"`
}

type RoomCreatedPayload struct {
	RoomCode  string `json:"room_code,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	JoinURL   string `json:"join_url,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

type JoinResultPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}
