package events

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus bundles the publisher and subscriber sides of the message transport
// used for email dispatch.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// NewGoChannelBus builds the in-process bus used when no brokers are
// configured (and in tests).
func NewGoChannelBus(logger *slog.Logger) *Bus {
	// Persistence keeps jobs published before the worker subscribes.
	pubsub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NewSlogLogger(logger))
	return &Bus{Publisher: pubsub, Subscriber: pubsub}
}

// NewKafkaBus builds a kafka-backed bus.
func NewKafkaBus(brokers []string, consumerGroup string, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       brokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: consumerGroup,
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	return &Bus{Publisher: publisher, Subscriber: subscriber}, nil
}

func (b *Bus) Close() error {
	if err := b.Publisher.Close(); err != nil {
		return err
	}
	// gochannel shares one pubsub for both sides; closing twice is safe.
	return b.Subscriber.Close()
}
