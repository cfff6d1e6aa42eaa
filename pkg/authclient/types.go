package authclient

// LoginRequest is the body of POST {base}/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the credential returned by a successful login.
// ExpiresIn is carried for callers; the client does not enforce it.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Listener observes session transitions. It is called synchronously after the
// store has changed; a slow listener delays Login/Logout returning.
type Listener interface {
	LoggedIn(username string, resp *LoginResponse)
	LoggedOut()
}
