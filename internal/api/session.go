package api

// Session carries the authenticated user's credentials. It is constructed
// once at startup and injected into the Client explicitly; nothing in this
// package reads ambient global state.
type Session struct {
	Token string
	User  string
}

// Valid reports whether the session carries a usable token.
func (s Session) Valid() bool {
	return s.Token != ""
}
