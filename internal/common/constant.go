package common

// SessionCookieName is the HTTP cookie carrying the opaque session identifier.
const SessionCookieName = "session"

// SessionMetadataKey is the gRPC metadata key carrying the session identifier.
const SessionMetadataKey = "session"

// SessionClearHeader is the gRPC response header set when the presented
// session identifier is no longer valid and the client should drop it.
const SessionClearHeader = "session-clear"

// SessionIDBytes is the number of random bytes in a session identifier
// before hex encoding.
const SessionIDBytes = 32
