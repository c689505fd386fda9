// Package protocol defines the wire types exchanged over the supervisor's
// local RPC endpoint: an externally tagged JSON discriminator ("type")
// carried by a flat struct per direction, covering the concrete
// request/response catalog the endpoint accepts.
package protocol

import "github.com/nekocode/agent-team/internal/agentteam/buffer"

// Request type discriminators.
const (
	TypeGetStatus          = "GetStatus"
	TypePrompt             = "Prompt"
	TypeGetOutput          = "GetOutput"
	TypeCancel             = "Cancel"
	TypeApprovePermission  = "ApprovePermission"
	TypeDenyPermission     = "DenyPermission"
	TypeRestart            = "Restart"
	TypeShutdown           = "Shutdown"
	TypeSetMode            = "SetMode"
	TypeSetConfig          = "SetConfig"
)

// Response type discriminators.
const (
	TypeOk     = "Ok"
	TypeError  = "Error"
	TypeStatus = "Status"
	TypeOutput = "Output"
)

// FileAttachment is one file attached to a Prompt request.
type FileAttachment struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SessionRequest is every request shape the supervisor's endpoint
// accepts, flattened with omitempty so each variant serializes to
// exactly the fields that request needs.
type SessionRequest struct {
	Type string `json:"type"`

	// Prompt
	Text  string           `json:"text,omitempty"`
	Files []FileAttachment `json:"files,omitempty"`

	// GetOutput
	Last      int  `json:"last,omitempty"`
	AgentOnly bool `json:"agent_only,omitempty"`

	// SetMode
	Mode string `json:"mode,omitempty"`

	// SetConfig
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// StatusSummary is the body of a Status response.
type StatusSummary struct {
	Name               string `json:"name"`
	AgentType          string `json:"agent_type"`
	Cwd                string `json:"cwd"`
	Status             string `json:"status"`
	Uptime             string `json:"uptime"`
	PromptCount        int    `json:"prompt_count"`
	PendingPermissions int    `json:"pending_permissions"`
	AgentInfoName      string `json:"agent_info_name"`
	AgentInfoVersion   string `json:"agent_info_version"`
}

// OutputEntry is the wire projection of a buffer.Entry.
type OutputEntry struct {
	Timestamp  string `json:"timestamp"`
	UpdateType string `json:"update_type"`
	Content    string `json:"content"`
}

// SessionResponse is every response shape the supervisor's endpoint emits.
type SessionResponse struct {
	Type string `json:"type"`

	// Ok / Error
	Message string `json:"message,omitempty"`

	// Status
	Summary *StatusSummary `json:"summary,omitempty"`

	// Output
	AgentName string        `json:"agent_name,omitempty"`
	Entries   []OutputEntry `json:"entries,omitempty"`
}

// Ok builds an {"type":"Ok","message":...} response.
func Ok(message string) SessionResponse {
	return SessionResponse{Type: TypeOk, Message: message}
}

// Err builds an {"type":"Error","message":...} response.
func Err(message string) SessionResponse {
	return SessionResponse{Type: TypeError, Message: message}
}

// StatusResp builds a {"type":"Status","summary":...} response.
func StatusResp(summary StatusSummary) SessionResponse {
	return SessionResponse{Type: TypeStatus, Summary: &summary}
}

// OutputResp builds a {"type":"Output","agent_name":...,"entries":[...]}
// response.
func OutputResp(agentName string, entries []OutputEntry) SessionResponse {
	return SessionResponse{Type: TypeOutput, AgentName: agentName, Entries: entries}
}

// updateTypeLabels maps a ring-buffer entry type to its wire/human label
// ("prompt", "message", "thought", ...).
var updateTypeLabels = map[buffer.EntryType]string{
	buffer.UserPrompt:        "prompt",
	buffer.AgentMessage:      "message",
	buffer.AgentThought:      "thought",
	buffer.ToolCallStart:     "tool",
	buffer.ToolCallUpdate:    "tool_update",
	buffer.ToolCallResult:    "tool_result",
	buffer.PlanUpdate:        "plan",
	buffer.PromptResponse:    "done",
	buffer.PermissionRequest: "permission",
	buffer.ModeUpdate:        "mode",
	buffer.ConfigUpdate:      "config",
	buffer.ErrorEntry:        "error",
}

// ToOutputEntry projects a buffer.Entry onto its wire representation.
func ToOutputEntry(e buffer.Entry) OutputEntry {
	return OutputEntry{
		Timestamp:  e.Timestamp.UTC().Format(rfc3339Milli),
		UpdateType: updateTypeLabels[e.Type],
		Content:    e.Content,
	}
}

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"
