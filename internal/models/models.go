package models

import (
	"gorm.io/gorm"
)

// Role identifies which side of the one-on-one a connection belongs to.
type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Session is the durable record of a scheduled one-on-one. Rows are created
// by the scheduling REST layer; this service reads them on room hydration and
// writes the notes field back through the debounced flush.
type Session struct {
	gorm.Model
	SessionID  string `gorm:"unique;not null" json:"sessionId"`
	OrgID      string `gorm:"not null" json:"orgId"`
	ManagerID  string `gorm:"not null" json:"managerId"`
	EmployeeID string `gorm:"not null" json:"employeeId"`
	Notes      string `gorm:"type:text" json:"notes"`
	Status     string `json:"status"`
}

/*** Inbound frames ***/

// Frame type tags accepted from clients. Anything else is ignored.
const (
	TypeContentUpdate = "content_update"
	TypeRequestEdit   = "request_edit"
	TypeAgendaToggle  = "agenda_toggle"
	TypeActionToggle  = "action_toggle"
	TypePing          = "ping"
)

// Envelope carries only the discriminator; payloads are decoded per type.
type Envelope struct {
	Type string `json:"type"`
}

type ContentUpdate struct {
	Content string `json:"content"`
}

// AgendaToggle uses pointer fields so missing keys can be told apart from
// zero values; toggles with missing or mistyped fields are dropped.
type AgendaToggle struct {
	ItemID  string `json:"itemId"`
	Covered *bool  `json:"covered"`
}

type ActionToggle struct {
	ItemID    string `json:"itemId"`
	Completed *bool  `json:"completed"`
}

/*** Outbound frames ***/

type ContentSync struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SessionID string `json:"sessionId"`
}

type Presence struct {
	Type              string `json:"type"`
	ManagerConnected  bool   `json:"managerConnected"`
	EmployeeConnected bool   `json:"employeeConnected"`
}

type EditRequest struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type AgendaUpdated struct {
	Type    string `json:"type"`
	ItemID  string `json:"itemId"`
	Covered bool   `json:"covered"`
}

type ActionUpdated struct {
	Type      string `json:"type"`
	ItemID    string `json:"itemId"`
	Completed bool   `json:"completed"`
}

type Pong struct {
	Type string `json:"type"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewContentSync(sessionID, content string) ContentSync {
	return ContentSync{Type: "content_sync", Content: content, SessionID: sessionID}
}

func NewPresence(manager, employee bool) Presence {
	return Presence{Type: "presence", ManagerConnected: manager, EmployeeConnected: employee}
}

func NewEditRequest(userID string) EditRequest {
	return EditRequest{Type: "edit_request", UserID: userID}
}

func NewAgendaUpdated(itemID string, covered bool) AgendaUpdated {
	return AgendaUpdated{Type: "agenda_updated", ItemID: itemID, Covered: covered}
}

func NewActionUpdated(itemID string, completed bool) ActionUpdated {
	return ActionUpdated{Type: "action_updated", ItemID: itemID, Completed: completed}
}

func NewPong() Pong { return Pong{Type: "pong"} }

func NewError(message string) ErrorFrame {
	return ErrorFrame{Type: "error", Message: message}
}
