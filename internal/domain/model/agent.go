package model

// Agent is a CI build agent.
type Agent struct {
	ID         string
	Name       string
	TypeID     string
	Connected  bool
	Enabled    bool
	Authorized bool
	UpToDate   bool
	WebURL     string
}

// Healthy reports whether the agent can accept builds.
func (a Agent) Healthy() bool {
	return a.Connected && a.Enabled && a.Authorized && a.UpToDate
}

// StatusLabel returns "connected" for a healthy agent, "disconnected" otherwise.
func (a Agent) StatusLabel() string {
	if a.Healthy() {
		return "connected"
	}
	return "disconnected"
}
