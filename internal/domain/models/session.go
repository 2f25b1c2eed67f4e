package models

// AdminSession is the identity of the administrator signed in to this console.
type AdminSession struct {
	Username string `json:"username"`
	AdminID  string `json:"adminId"`
	Token    string `json:"token,omitempty"`
}

// Redacted returns a copy safe to render; only a token prefix is kept.
func (s AdminSession) Redacted() AdminSession {
	out := s
	if len(out.Token) > 8 {
		out.Token = out.Token[:8] + "..."
	} else if out.Token != "" {
		out.Token = "..."
	}
	return out
}
