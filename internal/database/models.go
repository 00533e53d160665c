package database

// Incident is one processed escalation and what was done about it.
// Incidents are a record for operators, never an input to gating.
type Incident struct {
	ID          int64
	GuildID     string
	ActorID     string
	Action      string
	Verdict     string
	ActionTaken string
	Timestamp   int64
}

// BannedUser is a user the engine banned, kept so a benign rejoin can be
// recognized and cleaned up.
type BannedUser struct {
	ID       int64
	GuildID  string
	UserID   string
	Reason   string
	BannedAt int64
}
