package zoom

//go:generate go run go.uber.org/mock/mockgen -source=./zoom.go -destination=./mocks/zoom_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hash/fnv"
	"meetflow/config"
	"meetflow/infras/otel"
	"meetflow/infras/rest"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL     = "https://api.zoom.us/v2"
	scheduledMeeting   = 2
	meetingTimeLayout  = "2006-01-02T15:04:05Z"
	defaultMeetingHost = "me"
)

type MeetingInput struct {
	Topic    string
	Start    time.Time
	Duration time.Duration
	Timezone string
}

type Meeting struct {
	MeetingID string
	JoinURL   string
	StartURL  string
}

// Client is the video meeting provider.
type Client interface {
	CreateMeeting(ctx context.Context, input MeetingInput) (Meeting, error)
	DeleteMeeting(ctx context.Context, meetingID string) error
}

func New(cfg *config.Config, otl otel.Otel) Client {
	if cfg.External.Zoom.Mock {
		log.Warn().Msg("Video provider running in mock mode")

		return Stub{}
	}

	baseURL := cfg.External.Zoom.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &httpClient{rest: rest.New("zoom", baseURL, cfg.External.Zoom.AccessToken, otl)}
}

type httpClient struct {
	rest *rest.Client
}

type meetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone,omitempty"`
}

type meetingResponse struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url"`
}

func (c *httpClient) CreateMeeting(ctx context.Context, input MeetingInput) (Meeting, error) {
	req := meetingRequest{
		Topic:     input.Topic,
		Type:      scheduledMeeting,
		StartTime: input.Start.UTC().Format(meetingTimeLayout),
		Duration:  int(input.Duration.Minutes()),
		Timezone:  input.Timezone,
	}

	var res meetingResponse

	path := fmt.Sprintf("/users/%s/meetings", defaultMeetingHost)
	if err := c.rest.Do(ctx, http.MethodPost, path, req, &res); err != nil {
		return Meeting{}, fmt.Errorf("failed to create meeting: %w", err)
	}

	return Meeting{
		MeetingID: strconv.FormatInt(res.ID, 10),
		JoinURL:   res.JoinURL,
		StartURL:  res.StartURL,
	}, nil
}

// DeleteMeeting treats an already-deleted meeting as success.
func (c *httpClient) DeleteMeeting(ctx context.Context, meetingID string) error {
	err := c.rest.Do(ctx, http.MethodDelete, "/meetings/"+url.PathEscape(meetingID), nil, nil)
	if err != nil && !rest.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	return nil
}

// Stub returns stable meeting links derived from the topic.
type Stub struct{}

func (Stub) CreateMeeting(_ context.Context, input MeetingInput) (Meeting, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(input.Topic + input.Start.UTC().Format(time.RFC3339)))
	sum := h.Sum32()

	return Meeting{
		MeetingID: fmt.Sprintf("mock-%d", sum),
		JoinURL:   fmt.Sprintf("https://zoom.example/join/%d", sum),
		StartURL:  fmt.Sprintf("https://zoom.example/start/%d", sum),
	}, nil
}

func (Stub) DeleteMeeting(_ context.Context, _ string) error {
	return nil
}
