package handlers

// Cookie names
const (
	SessionCookieName = "session_id"
)

// CSRF form field name
const CSRFFieldName = "csrf_token"
