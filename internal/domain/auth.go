package domain

// ============================================================
// Auth request and response types
// ============================================================

// LoginRequest is the body for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /login. Which credential is
// filled depends on the configured auth mode.
type LoginResponse struct {
	Message string `json:"message"`
	XAPIKey string `json:"x_api_key,omitempty"`
	Token   string `json:"token,omitempty"`
}

// AuthMode selects which credentials the API accepts.
type AuthMode string

const (
	AuthModeAPIKey AuthMode = "api_key"
	AuthModeBearer AuthMode = "bearer"
	AuthModeBoth   AuthMode = "both"
)

// AcceptsAPIKey reports whether X-API-Key credentials are accepted.
func (m AuthMode) AcceptsAPIKey() bool {
	return m == AuthModeAPIKey || m == AuthModeBoth
}

// AcceptsBearer reports whether Bearer tokens are accepted.
func (m AuthMode) AcceptsBearer() bool {
	return m == AuthModeBearer || m == AuthModeBoth
}

// Valid reports whether m is a known mode.
func (m AuthMode) Valid() bool {
	return m.AcceptsAPIKey() || m.AcceptsBearer()
}
