package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrek82/namedsql/core"
	"github.com/shrek82/namedsql/logger"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "namedsql:events"

// Message is the JSON payload published for each event.
type Message struct {
	Kind       string    `json:"kind"`
	Connection string    `json:"connection"`
	Reason     string    `json:"reason,omitempty"`
	Message    string    `json:"message,omitempty"`
	Time       time.Time `json:"time"`
}

// NewMessage converts an event to its published form.
func NewMessage(ev core.Event, now time.Time) Message {
	msg := Message{
		Kind:       ev.Kind.String(),
		Connection: ev.Connection,
		Message:    ev.Message,
		Time:       now.UTC(),
	}
	if ev.Kind == core.EventClosed {
		msg.Reason = ev.Reason.String()
	}
	return msg
}

// RedisPublisher forwards registry, executor and model events to a Redis
// channel so that views in other processes can refresh.
type RedisPublisher struct {
	Client  *redis.Client
	Channel string
	Timeout time.Duration

	logger logger.Logger
}

func NewRedisPublisher(opt *redis.Options, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		Client:  redis.NewClient(opt),
		Channel: channel,
		Timeout: 2 * time.Second,
		logger:  logger.Discard(),
	}
}

// SetLogger sets the logger publish failures are reported to.
func (p *RedisPublisher) SetLogger(l logger.Logger) {
	p.logger = l
}

func (p *RedisPublisher) Name() string {
	return "RedisPublisher"
}

// Init checks that the server is reachable.
func (p *RedisPublisher) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.Client.Ping(ctx).Err()
}

func (p *RedisPublisher) Shutdown() error {
	return p.Client.Close()
}

// Publish sends one event. Listeners have no context, so each publish is
// bounded by Timeout.
func (p *RedisPublisher) Publish(ev core.Event) error {
	data, err := json.Marshal(NewMessage(ev, time.Now()))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()
	return p.Client.Publish(ctx, p.Channel, data).Err()
}

// Attach subscribes the publisher to the given kinds on sub, or to every
// kind if none are given. The returned function detaches it again.
func (p *RedisPublisher) Attach(sub core.Subscriber, kinds ...core.EventKind) func() {
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	listener := func(ev core.Event) {
		if err := p.Publish(ev); err != nil {
			p.logger.Warn("publishing %s event for %q: %v", ev.Kind, ev.Connection, err)
		}
	}

	var detach []func()
	for _, k := range kinds {
		detach = append(detach, sub.Subscribe(k, listener))
	}
	return func() {
		for _, d := range detach {
			d()
		}
	}
}

// AllKinds lists every event kind.
var AllKinds = []core.EventKind{
	core.EventConnected,
	core.EventClosed,
	core.EventError,
	core.EventWarning,
	core.EventDone,
	core.EventModelReset,
}
