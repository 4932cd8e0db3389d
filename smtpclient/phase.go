package smtpclient

import "github.com/sendkit/smtpsend"

// Phase names a point in the session lifecycle (§4.5 Session State
// Machine). Operations check the current Phase before touching the
// network and fail fast with InvalidState rather than sending a command
// the server is guaranteed to reject.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseGreeted
	PhaseReady
	PhaseAuthenticated
	PhaseInTxn
	PhaseSending
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseGreeted:
		return "greeted"
	case PhaseReady:
		return "ready"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseInTxn:
		return "in_txn"
	case PhaseSending:
		return "sending"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// requirePhase returns InvalidState unless the session is currently in one
// of the allowed phases.
func (s *Session) requirePhase(op string, allowed ...Phase) error {
	for _, p := range allowed {
		if s.phase == p {
			return nil
		}
	}
	return smtp.InvalidStateError(op + ": session is " + s.phase.String())
}
