package runtime

// Frame types sent to the client.
const (
	FrameRender = "render"
	FrameError  = "error"
)

// Frame is one message pushed to the client.
type Frame struct {
	Type    string `json:"type"`
	Seq     uint64 `json:"seq,omitempty"`
	HTML    string `json:"html,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Transport delivers frames to a client. Implementations must be safe for
// concurrent use; the session serializes its own sends but a transport may
// also carry control traffic.
type Transport interface {
	SendFrame(f Frame) error
	Close() error
}
