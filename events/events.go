// Package events carries engine events over watermill.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const MatchCompletedTopic = "match.completed"

// MatchCompleted is emitted once, when a playable match first becomes completed.
type MatchCompleted struct {
	MatchID      int       `json:"match_id"`
	TournamentID int       `json:"tournament_id"`
	Round        int       `json:"round"`
	WinnerID     int       `json:"winner_id"`
	LoserID      int       `json:"loser_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Publisher struct {
	pub message.Publisher
}

func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) PublishMatchCompleted(ctx context.Context, evt MatchCompleted) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal MatchCompleted: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("tournament_id", fmt.Sprint(evt.TournamentID))

	if err := p.pub.Publish(MatchCompletedTopic, msg); err != nil {
		return fmt.Errorf("failed to publish MatchCompleted for match %d: %w", evt.MatchID, err)
	}
	return nil
}

// NewInProcessPubSub returns the in-memory transport used by a single API process.
// Publishing blocks until the subscriber acks, so stats are applied before the
// score request returns.
func NewInProcessPubSub(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NewSlogLogger(logger))
}

type MatchCompletedHandler func(ctx context.Context, evt MatchCompleted) error

// ConsumeMatchCompleted subscribes to MatchCompletedTopic and runs handle for each
// event until ctx is cancelled. Handler failures are logged and the message is
// acked anyway; a failing stats write must not wedge the topic.
func ConsumeMatchCompleted(ctx context.Context, sub message.Subscriber, handle MatchCompletedHandler, logger *slog.Logger) error {
	messages, err := sub.Subscribe(ctx, MatchCompletedTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", MatchCompletedTopic, err)
	}

	go func() {
		for msg := range messages {
			var evt MatchCompleted
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				logger.Error("dropping malformed MatchCompleted message",
					slog.String("message_uuid", msg.UUID),
					slog.Any("error", err))
				msg.Ack()
				continue
			}
			if err := handle(msg.Context(), evt); err != nil {
				logger.Error("MatchCompleted handler failed",
					slog.Int("match_id", evt.MatchID),
					slog.Int("tournament_id", evt.TournamentID),
					slog.Any("error", err))
			}
			msg.Ack()
		}
	}()
	return nil
}
