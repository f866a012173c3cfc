package coordinator

// Status is the coarse connection state shown to users.
type Status int32

const (
	StatusOffline Status = iota
	StatusConnecting
	StatusConnected
	StatusSyncing
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusSyncing:
		return "syncing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON responses.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
