package audit

import (
	auditDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/audit"
)

const (
	ActionBootstrap      = "auth.bootstrap"
	ActionLogin          = "auth.login"
	ActionLogout         = "auth.logout"
	ActionChangePassword = "auth.change_password"

	ActionUserCreate        = "users.create"
	ActionUserUpdate        = "users.update"
	ActionUserDelete        = "users.delete"
	ActionUserResetPassword = "users.reset_password"

	ActionShiftCreate = "shifts.create"
	ActionShiftUpdate = "shifts.update"
	ActionShiftDelete = "shifts.delete"
)

const (
	ResourceUser    = "user"
	ResourceSession = "session"
	ResourceShift   = "shift"
)

// Entry describes one completed mutation. Empty actor and resource fields are
// stored as NULL.
type Entry struct {
	ActorUserID   string
	ActorUsername string
	Action        string
	ResourceType  string
	ResourceID    string
	StatusCode    int
}

type Log struct {
	ID            string  `json:"id"`
	OccurredAt    string  `json:"occurred_at"`
	ActorUserID   *string `json:"actor_user_id"`
	ActorUsername *string `json:"actor_username"`
	Action        string  `json:"action"`
	ResourceType  string  `json:"resource_type"`
	ResourceID    *string `json:"resource_id"`
	RequestMethod string  `json:"request_method"`
	RequestPath   string  `json:"request_path"`
	StatusCode    int     `json:"status_code"`
}

type LogsResponse struct {
	Logs []*Log `json:"logs"`
}

func FromDataModel(l *auditDatamodel.Log) *Log {
	return &Log{
		ID:            l.ID,
		OccurredAt:    l.OccurredAt,
		ActorUserID:   l.ActorUserID,
		ActorUsername: l.ActorUsername,
		Action:        l.Action,
		ResourceType:  l.ResourceType,
		ResourceID:    l.ResourceID,
		RequestMethod: l.RequestMethod,
		RequestPath:   l.RequestPath,
		StatusCode:    l.StatusCode,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
