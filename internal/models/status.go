package models

// ProcessingState is the orchestrator lifecycle state.
type ProcessingState string

const (
	StateIdle       ProcessingState = "idle"
	StateUploading  ProcessingState = "uploading"
	StateProcessing ProcessingState = "processing"
	StateSuccess    ProcessingState = "success"
	StateError      ProcessingState = "error"
)

// ProcessingStatus is the single status record of an orchestrator.
type ProcessingStatus struct {
	State    ProcessingState `json:"state"`
	Progress int             `json:"progress"` // 0-100
	Message  string          `json:"message"`
	Error    string          `json:"error,omitempty"`
}

// IdleStatus returns the initial status.
func IdleStatus() ProcessingStatus {
	return ProcessingStatus{State: StateIdle, Message: "Ready"}
}
