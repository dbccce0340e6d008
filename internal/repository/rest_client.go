package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
)

// RemoteRecorder observes calls made to the remote data service.
type RemoteRecorder interface {
	ObserveRemoteCall(operation, outcome string, duration time.Duration)
}

// RESTClient talks to a PostgREST/GoTrue style data service.
type RESTClient struct {
	baseURL  string
	anonKey  string
	http     *http.Client
	logger   *zap.Logger
	recorder RemoteRecorder
}

// NewRESTClient builds a client. A zero timeout falls back to ten seconds.
func NewRESTClient(baseURL, anonKey string, timeout time.Duration, logger *zap.Logger) *RESTClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetRecorder attaches remote call metrics.
func (c *RESTClient) SetRecorder(recorder RemoteRecorder) {
	c.recorder = recorder
}

type restRequest struct {
	operation string
	method    string
	path      string
	query     url.Values
	token     string
	body      interface{}
	headers   map[string]string
}

// do sends the request and decodes a JSON response into dest when dest is non-nil.
// Non-2xx responses become remote errors carrying the service's message.
func (c *RESTClient) do(ctx context.Context, req restRequest, dest interface{}) error {
	started := time.Now()
	err := c.send(ctx, req, dest)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if c.recorder != nil {
		c.recorder.ObserveRemoteCall(req.operation, outcome, time.Since(started))
	}
	return err
}

func (c *RESTClient) send(ctx context.Context, req restRequest, dest interface{}) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", req.operation, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", req.operation, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("apikey", c.anonKey)
	token := req.token
	if token == "" {
		token = c.anonKey
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range req.headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("remote request failed", zap.String("operation", req.operation), zap.Error(err))
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := remoteMessage(raw)
		c.logger.Debug("remote request rejected",
			zap.String("operation", req.operation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return appErrors.Remote(resp.StatusCode, message)
	}

	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, "invalid response from data service")
	}
	return nil
}

// remoteMessage extracts the human readable message from a PostgREST or GoTrue error body.
func remoteMessage(raw []byte) string {
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, candidate := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func transportError(err error) error {
	message := "network error"
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		message = "network timeout"
	case errors.As(err, &urlErr) && urlErr.Timeout():
		message = "network timeout"
	case errors.Is(err, context.Canceled):
		message = "request cancelled"
	}
	return appErrors.Wrap(err, appErrors.ErrRemote.Code, http.StatusBadGateway, message)
}

func eq(value string) string {
	return "eq." + value
}
