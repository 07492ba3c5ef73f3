package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room Business Logic Errors
	ErrRoomIDExists:    {Code: ErrRoomIDExists, Message: "Room already exists.", Status: http.StatusConflict},
	ErrRoomNotFound:    {Code: ErrRoomNotFound, Message: "Room does not exist.", Status: http.StatusNotFound},
	ErrNotRoomMember:   {Code: ErrNotRoomMember, Message: "You are not in this room.", Status: http.StatusForbidden},
	ErrHostOnly:        {Code: ErrHostOnly, Message: "Only host can control timer.", Status: http.StatusForbidden},
	ErrInvalidRoomID:   {Code: ErrInvalidRoomID, Message: "Invalid room id.", Status: http.StatusBadRequest},
	ErrInvalidSettings: {Code: ErrInvalidSettings, Message: "Invalid room settings: %s.", Status: http.StatusBadRequest},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthenticated:    {Code: ErrUnauthenticated, Message: "Unauthorized", Status: http.StatusUnauthorized},
	ErrMissingFields:      {Code: ErrMissingFields, Message: "All fields are required.", Status: http.StatusBadRequest},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Invalid email.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Email or username already exists.", Status: http.StatusBadRequest},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid credentials.", Status: http.StatusUnauthorized},
	ErrNotLoggedIn:        {Code: ErrNotLoggedIn, Message: "No user is logged in.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Internal server error.", Status: http.StatusInternalServerError},
}
