package model

// Close-reason marks as stored in the `close` column by the glosco wire
// protocol. A NULL close means the connection was last seen open.
const (
	CloseNormal         = 1
	CloseReset          = 2
	CloseConnectionless = 3
	CloseTimeout        = 4
)

// Protocol marks stored in the `proto` column.
const (
	ProtoTCP = 1
	ProtoUDP = 2
)

// ProtoName renders a proto mark for display.
func ProtoName(p int) string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	}
	return "?"
}

// ConnRecord is one row from the store's latest-per-connection view.
// Close and PKind are tri-state: the Has* flags distinguish NULL from zero.
type ConnRecord struct {
	Ident   string
	SrcHost string
	SrcPort int
	DstHost string
	DstPort int
	Proto   int

	// Failure signal (ICMP kind); non-null and non-zero means the
	// connection failed. Takes precedence over Close.
	PKind    int
	HasPKind bool

	// Close reason, one of the Close* marks, or absent while open.
	Close    int
	HasClose bool

	// Observation time, unix seconds.
	InsTime float64
}

// DrawState is the rendering classification of a connection. The order
// encodes rendering preference: later states win when a logical connection
// has several representations. StateNone is never produced by
// classification and marks "do not draw".
type DrawState int

const (
	StateNone DrawState = iota
	StateConnectionless
	StateEnded
	StateReset
	StateFailed
	StateActive
)

func (s DrawState) String() string {
	switch s {
	case StateConnectionless:
		return "CLESS"
	case StateEnded:
		return "ENDED"
	case StateReset:
		return "RESET"
	case StateFailed:
		return "FAILED"
	case StateActive:
		return "ACTIVE"
	}
	return "NONE"
}
