package dto

import (
	"strings"
	"time"
)

type ResourceData struct {
	ID string `json:"id"`
}

// Notification is a single entry of a provider change batch.
type Notification struct {
	ID             string        `json:"id"`
	SubscriptionID string        `json:"subscriptionId"`
	ChangeType     string        `json:"changeType"`
	ClientState    string        `json:"clientState"`
	Resource       string        `json:"resource"`
	ResourceData   *ResourceData `json:"resourceData"`
}

func (n Notification) NormalizedChangeType() string {
	return strings.ToLower(strings.TrimSpace(n.ChangeType))
}

// ResourceID prefers the resource data id and falls back to the last segment of the resource path.
func (n Notification) ResourceID() string {
	if n.ResourceData != nil && n.ResourceData.ID != "" {
		return n.ResourceData.ID
	}

	parts := strings.FieldsFunc(n.Resource, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}

	return parts[len(parts)-1]
}

type NotificationBatch struct {
	Value []Notification `json:"value"`
}

// JobPayload is the validated shape every job is created from.
type JobPayload struct {
	TenantID       string    `validate:"required,uuid"`
	SalespersonID  string    `validate:"required,uuid"`
	SubscriptionID string    `validate:"required,max=255"`
	ChangeType     string    `validate:"required,oneof=created updated deleted"`
	ResourceID     string    `validate:"required,max=512"`
	ReceivedAt     time.Time `validate:"required"`
}

type IngestResult struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Dropped    int `json:"dropped"`
}

// Outcome tells the worker what happened to a job and when to retry it.
type Outcome struct {
	Status  string
	RetryIn time.Duration
}
