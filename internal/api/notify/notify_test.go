package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cuongbtq/bid-service/shared/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	routingKey  string
	body        []byte
	contentType string
	err         error
}

func (p *capturePublisher) PublishWithRetry(_ context.Context, routingKey string, body []byte, contentType string) error {
	p.routingKey = routingKey
	p.body = body
	p.contentType = contentType
	return p.err
}

func TestBrokerNotifier_Notify(t *testing.T) {
	publisher := &capturePublisher{}
	notifier := NewBrokerNotifier(publisher, "marketplace", slog.New(slog.NewTextHandler(io.Discard, nil)))

	n := events.NewNotification("bid_accepted", "C1", "Bid accepted", "Your bid was accepted")
	n.BidID = "B1"
	require.NoError(t, notifier.Notify(context.Background(), n))

	assert.Equal(t, "marketplace.bid_accepted", publisher.routingKey)
	assert.Equal(t, events.ContentTypeJSON, publisher.contentType)

	decoded, err := events.Decode(publisher.body)
	require.NoError(t, err)
	assert.Equal(t, n.EventID, decoded.EventID)
	assert.Equal(t, "B1", decoded.BidID)
}

func TestBrokerNotifier_PublishFailure(t *testing.T) {
	publisher := &capturePublisher{err: errors.New("channel closed")}
	notifier := NewBrokerNotifier(publisher, "marketplace", slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := notifier.Notify(context.Background(), events.NewNotification("bid_rejected", "C2", "t", "b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bid_rejected")
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "bid_submitted", RoutingKey("", "bid_submitted"))
	assert.Equal(t, "notify.job_cancelled", RoutingKey("notify", "job_cancelled"))
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, notifier.Notify(context.Background(), events.NewNotification("bid_withdrawn", "H1", "Bid withdrawn", "b")))
	assert.Contains(t, buf.String(), "user_id=H1")
}
