package matchtype

import "fmt"

// Valve is the native matchmaking format. Its live detection and side
// switch differ from ESEA and are not modelled, so it fails fast instead
// of producing wrong statistics.
const Valve = "valve"

func newValve() (Policy, error) {
	return nil, fmt.Errorf("%w: %s demos are not currently supported", ErrUnsupported, Valve)
}
