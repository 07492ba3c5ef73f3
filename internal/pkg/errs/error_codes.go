/*
Package errs provides custom error types and application-level error code constants.

The same codes travel in HTTP JSON responses and in WebSocket "error" events, so a
client can branch on the number rather than on the message text.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room Business Logic Errors
const (
	// ErrRoomIDExists indicates that a room with the requested id is already registered.
	ErrRoomIDExists = 2102

	// ErrRoomNotFound indicates that the room id does not resolve to a live room.
	ErrRoomNotFound = 2103

	// ErrNotRoomMember indicates a room command from a connection that never joined the room.
	ErrNotRoomMember = 2105

	// ErrHostOnly indicates a timer control attempted by a non-host while strict mode is on.
	ErrHostOnly = 2106

	// ErrInvalidRoomID indicates a room id that is empty, too long or uses forbidden characters.
	ErrInvalidRoomID = 2107

	// ErrInvalidSettings indicates room settings outside the accepted ranges.
	ErrInvalidSettings = 2108
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthenticated indicates a missing or invalid identity at connection time.
	ErrUnauthenticated = 3101

	// ErrMissingFields indicates an auth form submitted without all required fields.
	ErrMissingFields = 3102

	// ErrInvalidEmail indicates a signup email that does not look like an address.
	ErrInvalidEmail = 3103

	// ErrUserAlreadyExists indicates a signup with a username or email already in use.
	ErrUserAlreadyExists = 3104

	// ErrInvalidCredentials indicates a login with an unknown user or a wrong password.
	ErrInvalidCredentials = 3105

	// ErrNotLoggedIn indicates a logout without a session cookie.
	ErrNotLoggedIn = 3106
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
