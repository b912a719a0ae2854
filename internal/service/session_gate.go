package service

const (
	adminUsername = "admin"
	adminPassword = "admin123"
)

type GateState int

const (
	LoggedOut GateState = iota
	LoggedIn
)

// SessionGate controls whether a dashboard renders its admin view. Once open it stays open; there is
// no logout transition.
type SessionGate struct {
	state GateState
}

// Login checks the credentials on every attempt, even when the gate is already open. A failed
// attempt never closes an open gate.
func (g *SessionGate) Login(username, password string) error {
	if username != adminUsername || password != adminPassword {
		return ErrInvalidCredentials
	}
	g.state = LoggedIn
	return nil
}

func (g *SessionGate) LoggedIn() bool {
	return g.state == LoggedIn
}
