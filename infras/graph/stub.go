package graph

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"
)

// Stub is the deterministic provider used for local development.
type Stub struct {
	now func() time.Time
}

func NewStub(now func() time.Time) *Stub {
	return &Stub{now: now}
}

func (s *Stub) GetBusySlots(_ context.Context, _ string, _, _ time.Time) ([]BusySlot, error) {
	return []BusySlot{}, nil
}

func (s *Stub) CreateEvent(_ context.Context, input EventInput) (EventResult, error) {
	sum := checksum(input.Subject)

	return EventResult{
		EventID: fmt.Sprintf("mock-event-%d", sum),
		ICalUID: fmt.Sprintf("mock-ical-%d", sum),
		ETag:    fmt.Sprintf("mock-etag-%d", s.now().UnixMilli()),
	}, nil
}

func (s *Stub) GetEvent(_ context.Context, _, eventID string) (EventDetails, error) {
	now := s.now().UTC()

	return EventDetails{
		EventID: eventID,
		Start:   now.Add(15 * time.Minute),
		End:     now.Add(75 * time.Minute),
		ETag:    fmt.Sprintf("mock-etag-%d", now.UnixMilli()),
	}, nil
}

func (s *Stub) DeleteEvent(_ context.Context, _, _ string) error {
	return nil
}

func (s *Stub) SendMail(_ context.Context, _ MailInput) error {
	return nil
}

func (s *Stub) CreateSubscription(_ context.Context, input SubscriptionInput) (SubscriptionResult, error) {
	return SubscriptionResult{
		SubscriptionID: fmt.Sprintf("mock-sub-%d-%d", checksum(input.Resource), s.now().UnixMilli()),
		ExpiresAt:      input.ExpiresAt.UTC(),
	}, nil
}

func (s *Stub) RenewSubscription(_ context.Context, subscriptionID string, expiresAt time.Time) (SubscriptionResult, error) {
	return SubscriptionResult{SubscriptionID: subscriptionID, ExpiresAt: expiresAt.UTC()}, nil
}

func checksum(value string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(value))

	return h.Sum32()
}
