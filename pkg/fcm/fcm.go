package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
)

// maxMulticastTokens is the FCM limit for a single multicast request.
const maxMulticastTokens = 500

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates a new FCM client from an initialized Firebase app
func NewClient(ctx context.Context, app *firebase.App) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
	}, nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title    string
	Body     string
	ImageURL string            // Optional notification image
	Data     map[string]string // Custom data payload
	// URL opened when the notification is clicked
	ClickAction string
}

func (n NotificationData) notification() *messaging.Notification {
	return &messaging.Notification{
		Title:    n.Title,
		Body:     n.Body,
		ImageURL: n.ImageURL,
	}
}

func (n NotificationData) data() map[string]string {
	if n.ClickAction == "" {
		return n.Data
	}
	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	data["click_action"] = n.ClickAction
	return data
}

func (n NotificationData) webpush() *messaging.WebpushConfig {
	cfg := &messaging.WebpushConfig{
		Notification: &messaging.WebpushNotification{
			Title: n.Title,
			Body:  n.Body,
			Icon:  "/icon-192.png",
		},
	}
	if n.ClickAction != "" {
		cfg.FCMOptions = &messaging.WebpushFCMOptions{Link: n.ClickAction}
	}
	return cfg
}

func (n NotificationData) android() *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			ClickAction: n.ClickAction,
		},
	}
}

// Failure is a token the notification could not be delivered to. Stale is set
// when FCM reported the token as unregistered or malformed, so it will never
// succeed again; other failures are transient.
type Failure struct {
	Token string
	Err   error
	Stale bool
}

// SendToDevices sends a push notification to multiple device tokens
// Returns the tokens that failed to receive the notification
func (c *Client) SendToDevices(ctx context.Context, tokens []string, notification NotificationData) ([]Failure, error) {
	var failedTokens []Failure
	for start := 0; start < len(tokens); start += maxMulticastTokens {
		end := min(start+maxMulticastTokens, len(tokens))
		failed, err := c.sendBatch(ctx, tokens[start:end], notification)
		if err != nil {
			return failedTokens, err
		}
		failedTokens = append(failedTokens, failed...)
	}
	return failedTokens, nil
}

func (c *Client) sendBatch(ctx context.Context, tokens []string, notification NotificationData) ([]Failure, error) {
	message := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: notification.notification(),
		Data:         notification.data(),
		Webpush:      notification.webpush(),
		Android:      notification.android(),
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	log.Printf("[FCM] Multicast sent: %d success, %d failures", response.SuccessCount, response.FailureCount)

	return collectFailures(tokens, response.Responses, isStaleTokenError), nil
}

// collectFailures pairs failed responses with their tokens. Responses are in token order.
func collectFailures(tokens []string, responses []*messaging.SendResponse, stale func(error) bool) []Failure {
	var failures []Failure
	for i, resp := range responses {
		if resp == nil || resp.Success || i >= len(tokens) {
			continue
		}
		f := Failure{Token: tokens[i], Err: resp.Error, Stale: stale(resp.Error)}
		log.Printf("[FCM] Failed to send to token %s (stale=%v): %v", Redact(f.Token), f.Stale, f.Err)
		failures = append(failures, f)
	}
	return failures
}

func isStaleTokenError(err error) bool {
	return messaging.IsUnregistered(err) || errorutils.IsInvalidArgument(err)
}

// Redact shortens a device token for logging.
func Redact(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
