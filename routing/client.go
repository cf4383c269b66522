package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// UpstreamError reports a failed call to the directions service. The caller
// decides whether it is fatal; during window sampling it is recorded per
// interval and the loop continues.
type UpstreamError struct {
	Status int
	Msg    string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("routing upstream: HTTP %d: %s", e.Status, e.Msg)
	}
	return "routing upstream: " + e.Msg
}

// Client queries the external directions service for transit routes.
type Client struct {
	endpoint   string
	apiKey     string
	region     string
	language   string
	httpClient *http.Client
}

// NewClient builds a directions client. A zero timeout falls back to 10s.
func NewClient(endpoint, apiKey, region, language string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		region:     region,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TransitRoutes asks for transit alternatives from origin to destination
// arriving no later than arriveBy. Provider-level rejections (bad status
// field) surface as UpstreamError; ZERO_RESULTS is not an error and yields
// an empty route list.
func (c *Client) TransitRoutes(ctx context.Context, origin, destination string, arriveBy time.Time) (*Response, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("mode", "transit")
	q.Set("transit_mode", "train")
	q.Set("alternatives", "true")
	q.Set("arrival_time", strconv.FormatInt(arriveBy.Unix(), 10))
	if c.region != "" {
		q.Set("region", c.region)
	}
	if c.language != "" {
		q.Set("language", c.language)
	}
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Msg: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Msg: "unexpected response status"}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Msg: err.Error()}
	}
	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &UpstreamError{Msg: "malformed payload: " + err.Error()}
	}
	switch out.Status {
	case "OK", "ZERO_RESULTS", "":
		return &out, nil
	default:
		msg := out.Status
		if out.ErrorMessage != "" {
			msg += ": " + out.ErrorMessage
		}
		return nil, &UpstreamError{Msg: msg}
	}
}
