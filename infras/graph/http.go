package graph

import (
	"context"
	"fmt"
	"meetflow/config"
	"meetflow/infras/otel"
	"meetflow/infras/rest"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	graphDateTimeLayout = "2006-01-02T15:04:05.9999999"
	graphUTC            = "UTC"
	defaultBaseURL      = "https://graph.microsoft.com/v1.0"
	changeTypes         = "created,updated,deleted"
	showAsFree          = "free"
)

type dateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func toDateTimeZone(t time.Time) dateTimeZone {
	return dateTimeZone{DateTime: t.UTC().Format(graphDateTimeLayout), TimeZone: graphUTC}
}

func (d dateTimeZone) parse() (time.Time, error) {
	t, err := time.ParseInLocation(graphDateTimeLayout, strings.TrimSuffix(d.DateTime, "Z"), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid provider time %q: %w", d.DateTime, err)
	}

	return t, nil
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
	Type         string       `json:"type,omitempty"`
}

type event struct {
	ID      string       `json:"id,omitempty"`
	ICalUID string       `json:"iCalUId,omitempty"`
	ETag    string       `json:"@odata.etag,omitempty"`
	Subject string       `json:"subject,omitempty"`
	Body    *itemBody    `json:"body,omitempty"`
	Start   dateTimeZone `json:"start"`
	End     dateTimeZone `json:"end"`
	ShowAs  string       `json:"showAs,omitempty"`
	// OriginalStartTimeZone keeps the organizer's zone on the calendar entry.
	OriginalStartTimeZone string      `json:"originalStartTimeZone,omitempty"`
	Attendees             []recipient `json:"attendees,omitempty"`
}

type subscription struct {
	ID                 string `json:"id,omitempty"`
	ChangeType         string `json:"changeType,omitempty"`
	NotificationURL    string `json:"notificationUrl,omitempty"`
	Resource           string `json:"resource,omitempty"`
	ExpirationDateTime string `json:"expirationDateTime"`
	ClientState        string `json:"clientState,omitempty"`
}

type httpClient struct {
	rest            *rest.Client
	sharedMailbox   string
	notificationURL string
}

func newHTTPClient(cfg *config.Config, otl otel.Otel) *httpClient {
	baseURL := cfg.External.Graph.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := rest.New("graph", baseURL, cfg.External.Graph.AccessToken, otl).
		WithHeader("Prefer", `outlook.timezone="UTC"`)

	return &httpClient{
		rest:            client,
		sharedMailbox:   cfg.External.Graph.SharedMailbox,
		notificationURL: cfg.Webhook.NotificationURL,
	}
}

func (c *httpClient) GetBusySlots(ctx context.Context, userID string, from, to time.Time) ([]BusySlot, error) {
	query := url.Values{}
	query.Set("startDateTime", from.UTC().Format(time.RFC3339))
	query.Set("endDateTime", to.UTC().Format(time.RFC3339))
	query.Set("$select", "start,end,showAs")

	var res struct {
		Value []event `json:"value"`
	}

	path := fmt.Sprintf("/users/%s/calendarView?%s", url.PathEscape(userID), query.Encode())
	if err := c.rest.Do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to list busy slots: %w", err)
	}

	slots := make([]BusySlot, 0, len(res.Value))

	for _, item := range res.Value {
		if item.ShowAs == showAsFree {
			continue
		}

		start, err := item.Start.parse()
		if err != nil {
			return nil, err
		}

		end, err := item.End.parse()
		if err != nil {
			return nil, err
		}

		slots = append(slots, BusySlot{Start: start, End: end})
	}

	return slots, nil
}

func (c *httpClient) CreateEvent(ctx context.Context, input EventInput) (EventResult, error) {
	req := event{
		Subject:               input.Subject,
		Body:                  &itemBody{ContentType: "HTML", Content: input.Body},
		Start:                 toDateTimeZone(input.Start),
		End:                   toDateTimeZone(input.End),
		OriginalStartTimeZone: input.Timezone,
		Attendees: []recipient{
			{EmailAddress: emailAddress{Address: input.AttendeeEmail}, Type: "required"},
		},
	}

	var res event

	path := fmt.Sprintf("/users/%s/events", url.PathEscape(input.OrganizerUserID))
	if err := c.rest.Do(ctx, http.MethodPost, path, req, &res); err != nil {
		return EventResult{}, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return EventResult{EventID: res.ID, ICalUID: res.ICalUID, ETag: res.ETag}, nil
}

func (c *httpClient) GetEvent(ctx context.Context, organizerUserID, eventID string) (EventDetails, error) {
	var res event

	path := fmt.Sprintf("/users/%s/events/%s", url.PathEscape(organizerUserID), url.PathEscape(eventID))

	err := c.rest.Do(ctx, http.MethodGet, path, nil, &res)
	if rest.IsStatus(err, http.StatusNotFound) {
		return EventDetails{}, ErrEventNotFound
	}

	if err != nil {
		return EventDetails{}, fmt.Errorf("failed to get calendar event: %w", err)
	}

	start, err := res.Start.parse()
	if err != nil {
		return EventDetails{}, err
	}

	end, err := res.End.parse()
	if err != nil {
		return EventDetails{}, err
	}

	return EventDetails{EventID: res.ID, Start: start, End: end, ETag: res.ETag}, nil
}

// DeleteEvent treats an already-deleted event as success.
func (c *httpClient) DeleteEvent(ctx context.Context, organizerUserID, eventID string) error {
	path := fmt.Sprintf("/users/%s/events/%s", url.PathEscape(organizerUserID), url.PathEscape(eventID))

	err := c.rest.Do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil && !rest.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}

	return nil
}

func (c *httpClient) SendMail(ctx context.Context, input MailInput) error {
	req := map[string]any{
		"message": map[string]any{
			"subject":      input.Subject,
			"body":         itemBody{ContentType: "HTML", Content: input.Body},
			"toRecipients": []recipient{{EmailAddress: emailAddress{Address: input.To}}},
		},
		"saveToSentItems": false,
	}

	path := fmt.Sprintf("/users/%s/sendMail", url.PathEscape(c.sharedMailbox))
	if err := c.rest.Do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

func (c *httpClient) CreateSubscription(ctx context.Context, input SubscriptionInput) (SubscriptionResult, error) {
	req := subscription{
		ChangeType:         changeTypes,
		NotificationURL:    c.notificationURL,
		Resource:           input.Resource,
		ExpirationDateTime: input.ExpiresAt.UTC().Format(time.RFC3339),
		ClientState:        input.ClientState,
	}

	var res subscription
	if err := c.rest.Do(ctx, http.MethodPost, "/subscriptions", req, &res); err != nil {
		return SubscriptionResult{}, fmt.Errorf("failed to create subscription: %w", err)
	}

	return toSubscriptionResult(res, input.ExpiresAt)
}

func (c *httpClient) RenewSubscription(ctx context.Context, subscriptionID string, expiresAt time.Time) (SubscriptionResult, error) {
	req := subscription{ExpirationDateTime: expiresAt.UTC().Format(time.RFC3339)}

	var res subscription

	path := "/subscriptions/" + url.PathEscape(subscriptionID)
	if err := c.rest.Do(ctx, http.MethodPatch, path, req, &res); err != nil {
		return SubscriptionResult{}, fmt.Errorf("failed to renew subscription: %w", err)
	}

	if res.ID == "" {
		res.ID = subscriptionID
	}

	return toSubscriptionResult(res, expiresAt)
}

// the provider may shorten the requested expiry, so its answer wins
func toSubscriptionResult(res subscription, requested time.Time) (SubscriptionResult, error) {
	if res.ExpirationDateTime == "" {
		return SubscriptionResult{SubscriptionID: res.ID, ExpiresAt: requested.UTC()}, nil
	}

	expiresAt, err := time.Parse(time.RFC3339, res.ExpirationDateTime)
	if err != nil {
		return SubscriptionResult{}, fmt.Errorf("invalid subscription expiry %q: %w", res.ExpirationDateTime, err)
	}

	return SubscriptionResult{SubscriptionID: res.ID, ExpiresAt: expiresAt.UTC()}, nil
}
