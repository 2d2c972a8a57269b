package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAuditRecorded   = "audit.recorded"
	EventTypeSessionsRevoked = "sessions.revoked"
)

// AuditRecordedEvent is published after an audit entry has been committed.
type AuditRecordedEvent struct {
	BaseEvent
	LogID        string `json:"log_id"`
	Action       string `json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id,omitempty"`
	ActorUserID  string `json:"actor_user_id,omitempty"`
	StatusCode   int    `json:"status_code"`
}

func NewAuditRecordedEvent(logID, action, resourceType, resourceID, actorUserID string, statusCode int) *AuditRecordedEvent {
	return &AuditRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAuditRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"log_id":        logID,
				"action":        action,
				"resource_type": resourceType,
				"resource_id":   resourceID,
				"actor_user_id": actorUserID,
				"status_code":   statusCode,
			},
		},
		LogID:        logID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ActorUserID:  actorUserID,
		StatusCode:   statusCode,
	}
}

// SessionsRevokedEvent is published after sessions were deleted for a reason
// other than lazy expiry.
type SessionsRevokedEvent struct {
	BaseEvent
	UserID string `json:"user_id,omitempty"`
	Reason string `json:"reason"`
	Count  int64  `json:"count"`
}

func NewSessionsRevokedEvent(userID, reason string, count int64) *SessionsRevokedEvent {
	return &SessionsRevokedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionsRevoked,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"reason":  reason,
				"count":   count,
			},
		},
		UserID: userID,
		Reason: reason,
		Count:  count,
	}
}
