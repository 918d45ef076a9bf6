package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMNotifier delivers notifications through the FCM HTTP v1 API,
// authenticating with a service-account token source.
type FCMNotifier struct {
	projectID   string
	tokenSource oauth2.TokenSource
	client      *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewFCMNotifier creates an FCM notifier from a service account key file.
func NewFCMNotifier(ctx context.Context, projectID, credentialsFile string, logger *slog.Logger) (*FCMNotifier, error) {
	if projectID == "" {
		return nil, errors.New("fcm project id is required")
	}

	key, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read credentials file: %s", credentialsFile)
	}
	conf, err := google.JWTConfigFromJSON(key, fcmScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse service account credentials")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FCMNotifier{
		projectID:   projectID,
		tokenSource: conf.TokenSource(ctx),
		client:      &http.Client{Timeout: sendTimeout},
		// FCM tolerates far more, but a modest ceiling keeps a runaway
		// batch from tripping provider-side throttling.
		limiter: rate.NewLimiter(rate.Limit(50), 100),
		logger:  logger,
	}, nil
}

type fcmMessage struct {
	Message struct {
		Token        string            `json:"token"`
		Notification fcmNotification   `json:"notification"`
		Data         map[string]string `json:"data,omitempty"`
	} `json:"message"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send pushes one notification to a device token.
func (n *FCMNotifier) Send(ctx context.Context, deviceToken string, message Message, data map[string]string) error {
	if deviceToken == "" {
		return errors.New("device token is empty")
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter interrupted")
	}

	token, err := n.tokenSource.Token()
	if err != nil {
		return errors.Wrap(err, "failed to obtain access token")
	}

	var payload fcmMessage
	payload.Message.Token = deviceToken
	payload.Message.Notification = fcmNotification{Title: message.Title, Body: message.Body}
	payload.Message.Data = data

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal fcm message")
	}

	url := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", n.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build fcm request")
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "fcm request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("fcm returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// NoopNotifier logs deliveries instead of sending them. It backs demo mode
// and deployments without FCM credentials.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a notifier that only logs.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopNotifier{logger: logger}
}

// Send logs the would-be delivery and reports success.
func (n *NoopNotifier) Send(_ context.Context, deviceToken string, message Message, _ map[string]string) error {
	n.logger.Info("noop notifier delivery", "token_len", len(deviceToken), "title", message.Title, "body", message.Body)
	return nil
}
