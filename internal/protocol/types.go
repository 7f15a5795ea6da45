package protocol

// Message types sent by control clients.
const (
	TypeActivate = "activate"
	TypeQuit     = "quit"
	TypeStatus   = "status"
	TypePing     = "ping"
)

// Message types sent by the server.
const (
	TypeConnected = "connected"
	TypeLabel     = "label"
	TypePong      = "pong"
	TypeError     = "error"
)

// Request is a message from a control client to awake.
type Request struct {
	Type string `json:"type"`
}

// Response is a message from awake to a control client. Label and State
// are filled in for connected, label and status messages.
type Response struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id,omitempty"`
	Label    string `json:"label,omitempty"`
	State    string `json:"state,omitempty"`
	Error    string `json:"error,omitempty"`
}
