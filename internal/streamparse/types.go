package streamparse

// Phase tracks command detection across one response. It only moves
// forward; Reset starts a new session.
type Phase uint8

const (
	PhaseNoCommand Phase = iota
	PhaseCommandOpening
	PhaseCommandComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseNoCommand:
		return "no_command"
	case PhaseCommandOpening:
		return "command_opening"
	case PhaseCommandComplete:
		return "command_complete"
	default:
		return "unknown"
	}
}

// Status reports how a result left the parser. The parser itself only
// produces StatusStreaming and StatusComplete; StatusError is reserved for
// callers reporting transport-level failure alongside the last snapshot.
type Status string

const (
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Command is a structured editor command extracted from the response.
type Command struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Result is the render-ready view of the stream after a chunk or after
// finalization.
type Result struct {
	// DisplayContent is the prose to show, with streaming artifacts
	// stripped.
	DisplayContent string `json:"display_content"`
	// InJSON reports that a command region has opened and later text
	// belongs to it rather than to the prose.
	InJSON bool `json:"in_json"`
	// FunctionCall is the extracted command once parsing completed.
	FunctionCall *Command `json:"function_call,omitempty"`
	// Buffer is the raw accumulated response text.
	Buffer string `json:"buffer"`
	// Status is StatusStreaming until Finalize; Finalize reports
	// StatusComplete exactly when a command was cached.
	Status Status `json:"status"`
}

// CandidateState classifies a command region.
type CandidateState uint8

const (
	// CandidatePending means the region has not closed yet.
	CandidatePending CandidateState = iota
	// CandidateValid means the region parsed into a complete command.
	CandidateValid
	// CandidateInvalid means the region can never become a command.
	CandidateInvalid
)

// CommandCandidate is the outcome of inspecting a command region.
type CommandCandidate struct {
	State   CandidateState
	Raw     string
	Command *Command
	Reason  string
}
