package wallet

// State is the wallet lifecycle state.
type State int

// Lifecycle states.
const (
	StateCreated State = iota
	StateInitializing
	StateInitialized
	StateNeedInitialization
	StateLoading
	StateLoaded
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateNeedInitialization:
		return "need-initialization"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
