// Package dispatch routes decoded websocket frames to the handler
// registered for their topic. Each venue builds one static map per
// channel (public, private) at construction time; there is no runtime
// registration.
package dispatch

import (
	"encoding/json"

	"go.uber.org/zap"
)

// TopicHandler applies a venue payload to local state. Refresh treats
// the payload as a complete snapshot, replacing local state outright.
// Process applies the payload as an incremental update on top of
// whatever Refresh last established.
type TopicHandler interface {
	Refresh(payload json.RawMessage) error
	Process(payload json.RawMessage) error
}

// UnknownTopic is emitted for every frame whose topic does not match a
// registered handler. That includes control/ack frames (ping/pong,
// subscribe ack, auth ack): the venue ParseFrame functions return them
// with an empty Topic, and the dispatcher does not tell them apart
// from unrecognized topics.
type UnknownTopic struct {
	Topic string
	Raw   json.RawMessage
}

// TopicMap is a venue's static topic -> handler routing table for one
// channel (public or private).
type TopicMap map[string]TopicHandler

// Frame is a decoded, topic-tagged websocket message plus a flag for
// whether it is a full snapshot or an incremental update.
type Frame struct {
	Topic      string
	IsSnapshot bool
	Payload    json.RawMessage
}

// Dispatcher routes frames for one venue session's channel.
type Dispatcher struct {
	topics    TopicMap
	logger    *zap.Logger
	onUnknown func(UnknownTopic)
}

// New builds a Dispatcher over topics. onUnknown, if non-nil, is
// invoked for frames whose topic has no registered handler.
func New(topics TopicMap, logger *zap.Logger, onUnknown func(UnknownTopic)) *Dispatcher {
	return &Dispatcher{topics: topics, logger: logger, onUnknown: onUnknown}
}

// Route applies frame to its registered handler, calling Refresh or
// Process depending on frame.IsSnapshot. Unrecognized topics are
// reported via onUnknown rather than treated as an error, since a
// venue's control frames (pings, acks) also arrive on this channel.
func (d *Dispatcher) Route(frame Frame) error {
	handler, ok := d.topics[frame.Topic]
	if !ok {
		if d.onUnknown != nil {
			d.onUnknown(UnknownTopic{Topic: frame.Topic, Raw: frame.Payload})
		}
		return nil
	}

	if frame.IsSnapshot {
		if err := handler.Refresh(frame.Payload); err != nil {
			d.logger.Error("refresh failed", zap.String("topic", frame.Topic), zap.Error(err))
			return err
		}
		return nil
	}

	if err := handler.Process(frame.Payload); err != nil {
		d.logger.Error("process failed", zap.String("topic", frame.Topic), zap.Error(err))
		return err
	}
	return nil
}
