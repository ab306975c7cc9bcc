package tenant

// State is a point in the tenant lifecycle. Provisioning and deactivated
// are persisted facts; degraded is derived from health probes and never
// written anywhere.
type State string

const (
	StateProvisioning State = "provisioning"
	StateActive       State = "active"
	StateDegraded     State = "degraded"
	StateDeactivated  State = "deactivated"
)

// transitions is the allowed-move table. Deactivated is terminal: a tenant
// that comes back signs up again and gets a fresh id.
var transitions = map[State][]State{
	StateProvisioning: {StateActive},
	StateActive:       {StateDegraded, StateDeactivated},
	StateDegraded:     {StateActive, StateDeactivated},
	StateDeactivated:  {},
}

// CanTransition reports whether a tenant may move from one state to
// another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from s.
func (s State) Terminal() bool {
	next, known := transitions[s]
	return known && len(next) == 0
}
