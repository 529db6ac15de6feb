package graph

//go:generate go run go.uber.org/mock/mockgen -source=./graph.go -destination=./mocks/graph_mock.go -package=mocks

import (
	"context"
	"errors"
	"meetflow/config"
	"meetflow/infras/otel"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrEventNotFound is returned when the calendar no longer has the event.
var ErrEventNotFound = errors.New("calendar event not found")

type BusySlot struct {
	Start time.Time
	End   time.Time
}

type EventInput struct {
	OrganizerUserID string
	Subject         string
	Start           time.Time
	End             time.Time
	Timezone        string
	AttendeeEmail   string
	Body            string
}

type EventResult struct {
	EventID string
	ICalUID string
	ETag    string
}

type EventDetails struct {
	EventID string
	Start   time.Time
	End     time.Time
	ETag    string
}

type MailInput struct {
	To      string
	Subject string
	Body    string
}

type SubscriptionInput struct {
	Resource    string
	ExpiresAt   time.Time
	ClientState string
}

type SubscriptionResult struct {
	SubscriptionID string
	ExpiresAt      time.Time
}

// Client is the calendar and identity provider.
type Client interface {
	GetBusySlots(ctx context.Context, userID string, from, to time.Time) ([]BusySlot, error)
	CreateEvent(ctx context.Context, input EventInput) (EventResult, error)
	GetEvent(ctx context.Context, organizerUserID, eventID string) (EventDetails, error)
	DeleteEvent(ctx context.Context, organizerUserID, eventID string) error
	SendMail(ctx context.Context, input MailInput) error
	CreateSubscription(ctx context.Context, input SubscriptionInput) (SubscriptionResult, error)
	RenewSubscription(ctx context.Context, subscriptionID string, expiresAt time.Time) (SubscriptionResult, error)
}

func New(cfg *config.Config, otl otel.Otel) Client {
	if cfg.External.Graph.Mock {
		log.Warn().Msg("Calendar provider running in mock mode")

		return NewStub(time.Now)
	}

	return newHTTPClient(cfg, otl)
}

// EventsResource is the subscription resource path for a user's calendar.
func EventsResource(userID string) string {
	return "/users/" + userID + "/events"
}
