package session

// State is the controller's position in the sign-in lifecycle. States exist
// only for the lifetime of the process; nothing is persisted.
//
//	Uninitialized → Restoring → Idle ⇄ SigningIn
//	Idle → Disconnecting → SignedOut
type State int32

const (
	StateUninitialized State = iota
	StateRestoring
	StateIdle
	StateSigningIn
	StateDisconnecting
	StateSignedOut
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateIdle:
		return "idle"
	case StateSigningIn:
		return "signing_in"
	case StateDisconnecting:
		return "disconnecting"
	case StateSignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}
