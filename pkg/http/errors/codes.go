package errors

// Error codes shared by HTTP error bodies and websocket replies.
const (
	// Authentication errors
	ErrCodeInvalidToken = "invalid_token"

	// Validation errors
	ErrCodeInvalidPayload  = "invalid_payload"
	ErrCodeInvalidRoomCode = "invalid_room_code"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Room/Match errors
	ErrCodeRoomCreationFailed = "room_creation_failed"
	ErrCodeRoomNotFound       = "room_not_found"
	ErrCodeSelfJoin           = "self_join"
	ErrCodeAlreadyInMatch     = "already_in_match"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeUpstreamError = "upstream_error"
)
