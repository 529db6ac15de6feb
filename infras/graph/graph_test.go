package graph

import (
	"context"
	"encoding/json"
	"meetflow/config"
	"meetflow/infras/otel/mocks"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *httpClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.External.Graph.BaseURL = server.URL
	cfg.External.Graph.AccessToken = "graph-token"
	cfg.External.Graph.SharedMailbox = "noreply@example.com"
	cfg.Webhook.NotificationURL = "https://api.example.com/webhooks/graph"

	return newHTTPClient(cfg, mocks.NewOtel())
}

func TestGetBusySlots_SkipsFree(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/user-1/calendarView", r.URL.Path)
		assert.Equal(t, `outlook.timezone="UTC"`, r.Header.Get("Prefer"))
		assert.NotEmpty(t, r.URL.Query().Get("startDateTime"))

		_, _ = w.Write([]byte(`{"value":[
			{"showAs":"busy","start":{"dateTime":"2026-03-02T01:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2026-03-02T02:00:00.0000000","timeZone":"UTC"}},
			{"showAs":"free","start":{"dateTime":"2026-03-02T03:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2026-03-02T04:00:00.0000000","timeZone":"UTC"}}
		]}`))
	})

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	slots, err := client.GetBusySlots(context.Background(), "user-1", from, from.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC), slots[0].End)
}

func TestCreateEvent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/org-1/events", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Demo", body["subject"])

		start := body["start"].(map[string]any)
		assert.Equal(t, "2026-03-02T01:00:00", start["dateTime"])
		assert.Equal(t, "UTC", start["timeZone"])

		_, _ = w.Write([]byte(`{"id":"evt-1","iCalUId":"ical-1","@odata.etag":"W/\"1\""}`))
	})

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.FixedZone("JST", 9*3600))

	res, err := client.CreateEvent(context.Background(), EventInput{
		OrganizerUserID: "org-1",
		Subject:         "Demo",
		Start:           start,
		End:             start.Add(time.Hour),
		Timezone:        "Asia/Tokyo",
		AttendeeEmail:   "c@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, EventResult{EventID: "evt-1", ICalUID: "ical-1", ETag: `W/"1"`}, res)
}

func TestGetEvent_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetEvent(context.Background(), "org-1", "evt-1")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDeleteEvent_AlreadyGone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, client.DeleteEvent(context.Background(), "org-1", "evt-1"))
}

func TestDeleteEvent_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Error(t, client.DeleteEvent(context.Background(), "org-1", "evt-1"))
}

func TestCreateSubscription(t *testing.T) {
	expires := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions", r.URL.Path)

		var body subscription
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "created,updated,deleted", body.ChangeType)
		assert.Equal(t, "https://api.example.com/webhooks/graph", body.NotificationURL)
		assert.Equal(t, "/users/u-1/events", body.Resource)
		assert.Equal(t, "secret", body.ClientState)

		_, _ = w.Write([]byte(`{"id":"sub-1","expirationDateTime":"2026-03-02T11:00:00Z"}`))
	})

	res, err := client.CreateSubscription(context.Background(), SubscriptionInput{
		Resource:    EventsResource("u-1"),
		ExpiresAt:   expires,
		ClientState: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", res.SubscriptionID)
	assert.Equal(t, expires.Add(-time.Hour), res.ExpiresAt)
}

func TestRenewSubscription_KeepsID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/subscriptions/sub-1", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	})

	expires := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	res, err := client.RenewSubscription(context.Background(), "sub-1", expires)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionResult{SubscriptionID: "sub-1", ExpiresAt: expires}, res)
}

func TestStub_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	stub := NewStub(func() time.Time { return now })

	first, err := stub.CreateEvent(context.Background(), EventInput{Subject: "Demo"})
	require.NoError(t, err)

	second, err := stub.CreateEvent(context.Background(), EventInput{Subject: "Demo"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first.EventID, "mock-event-")

	details, err := stub.GetEvent(context.Background(), "org", "evt")
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), details.Start)
	assert.Equal(t, now.Add(75*time.Minute), details.End)
}
