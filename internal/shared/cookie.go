package shared

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "meridian_token"
