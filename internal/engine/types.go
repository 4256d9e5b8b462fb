package engine

// InterfaceHandle identifies the probed interface by its configured name and
// the ifIndex it resolved to.
type InterfaceHandle struct {
	Name  string
	Index int
}

// OperStatus is the IF-MIB ifOperStatus value.
type OperStatus int

const (
	OperUp OperStatus = iota + 1
	OperDown
	OperTesting
	OperUnknown
	OperDormant
	OperNotPresent
	OperLowerLayerDown
)

// OperStatusFromCode maps an ifOperStatus code; unrecognized codes are unknown.
func OperStatusFromCode(code uint64) OperStatus {
	if code < uint64(OperUp) || code > uint64(OperLowerLayerDown) {
		return OperUnknown
	}
	return OperStatus(code)
}

func (s OperStatus) String() string {
	switch s {
	case OperUp:
		return "up"
	case OperDown:
		return "down"
	case OperTesting:
		return "testing"
	case OperDormant:
		return "dormant"
	case OperNotPresent:
		return "notPresent"
	case OperLowerLayerDown:
		return "lowerLayerDown"
	default:
		return "unknown"
	}
}

// Duplex is the per-port duplex mode reported by the EtherLike-MIB.
type Duplex int

const (
	DuplexUnknown Duplex = iota + 1
	DuplexHalf
	DuplexFull
	// DuplexUnsupported means the device has no dot3Stats row for the port.
	DuplexUnsupported
)

// DuplexFromCode maps a dot3StatsDuplexStatus code.
func DuplexFromCode(code uint64) Duplex {
	switch code {
	case 2:
		return DuplexHalf
	case 3:
		return DuplexFull
	default:
		return DuplexUnknown
	}
}

func (d Duplex) String() string {
	switch d {
	case DuplexHalf:
		return "half"
	case DuplexFull:
		return "full"
	case DuplexUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Phrase renders the mode for messages, e.g. "full duplex".
func (d Duplex) Phrase() string {
	return d.String() + " duplex"
}
