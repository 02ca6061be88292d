package event

// Type identifies the source of the message
type Type int

const (
	DeviceLine    Type = iota // A complete line from the device
	SendProgress              // Cells streamed so far by the send worker
	SendDone                  // Send worker finished (Err set on failure)
	SystemControl
	AsyncResult // Async work completion dispatched onto the session loop
)

// Control action constants
const (
	ActionQuit       = "quit"
	ActionConnect    = "connect"
	ActionDisconnect = "disconnect"
	ActionReload     = "reload"
	ActionLoadScript = "load_script"
)

// ControlOp contains control operation details
type ControlOp struct {
	Action     string // Use Action* constants
	Target     string
	ScriptPath string
}

// Progress describes how far a send has gone.
type Progress struct {
	Sent  int
	Total int
}

// Event is the universal packet sent to the session loop
type Event struct {
	Type     Type
	Payload  string    // Device text
	Progress Progress  // For SendProgress
	Err      error     // For SendDone
	Callback func()    // For AsyncResult
	Control  ControlOp // For SystemControl events
}
