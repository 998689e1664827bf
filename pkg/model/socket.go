package model

// Protocol identifies the transport protocol of a socket.
type Protocol string

const (
	ProtoTCP Protocol = "TCP"
	ProtoUDP Protocol = "UDP"
)

// TCPState is a TCP connection state as reported by the kernel.
// UDP sockets carry no state.
type TCPState string

const (
	StateEstablished TCPState = "ESTABLISHED"
	StateSynSent     TCPState = "SYN_SENT"
	StateSynRecv     TCPState = "SYN_RECV"
	StateFinWait1    TCPState = "FIN_WAIT1"
	StateFinWait2    TCPState = "FIN_WAIT2"
	StateTimeWait    TCPState = "TIME_WAIT"
	StateClose       TCPState = "CLOSE"
	StateCloseWait   TCPState = "CLOSE_WAIT"
	StateLastAck     TCPState = "LAST_ACK"
	StateListen      TCPState = "LISTEN"
	StateClosing     TCPState = "CLOSING"
	StateUnknown     TCPState = "UNKNOWN"
)

// RawSocket is one observation straight from the OS socket table, before
// it has been joined with the process table. PID 0 means the owning
// process could not be determined (e.g. no readable fd link).
type RawSocket struct {
	Protocol   Protocol
	LocalAddr  string
	LocalPort  int
	RemoteAddr string // empty for listening/unconnected sockets
	RemotePort int
	State      TCPState // TCP only; empty for UDP
	PID        int
	Inode      uint64 // linux only; 0 elsewhere
}

// SocketRecord is an immutable snapshot of one socket joined with its
// owning process. Records are only created by an index build; a rebuild
// produces a fresh generation of records rather than mutating these.
// State is set only when Protocol is TCP — the build clears it for UDP
// so a UDP record cannot carry a spurious connection state.
type SocketRecord struct {
	Protocol    Protocol `json:"protocol"`
	LocalAddr   string   `json:"local_addr"`
	LocalPort   int      `json:"local_port"`
	RemoteAddr  string   `json:"remote_addr,omitempty"`
	RemotePort  int      `json:"remote_port,omitempty"`
	State       TCPState `json:"state,omitempty"`
	PID         int      `json:"pid"`
	ProcessName string   `json:"process_name"`
	UID         int      `json:"uid"` // -1 when not visible at this privilege level
	Inode       uint64   `json:"inode,omitempty"`
}

// UnknownProcessName is the placeholder used when a socket's PID cannot
// be resolved to a process. Such sockets stay in the index.
const UnknownProcessName = "unknown"
