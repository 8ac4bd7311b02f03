package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/zoobzio/formz"
)

// ActionType names a form action carried over pub/sub.
type ActionType string

const (
	// ActionSetValue replaces a form value. See formz.Bus.SetFormValue.
	ActionSetValue ActionType = "set_value"
	// ActionSubmit submits a form. See formz.Bus.SubmitForm.
	ActionSubmit ActionType = "submit"
)

var (
	// ErrUnknownAction is returned for messages with an unsupported type.
	ErrUnknownAction = errors.New("unknown action type")
	// ErrMissingFormID is returned for messages without a form id.
	ErrMissingFormID = errors.New("missing form id")
)

// Action is the JSON message published on the action channel.
//
//	{"type": "set_value", "form_id": "profile", "value": {"name": "Ross"}, "reset": true}
//	{"type": "submit", "form_id": "profile"}
type Action struct {
	Type   ActionType  `json:"type"`
	FormID string      `json:"form_id"`
	Value  formz.Value `json:"value,omitempty"`
	Reset  bool        `json:"reset,omitempty"`
}

// ResultHandler receives the outcome of every dispatched action.
type ResultHandler func(action Action, issues formz.Issues, err error)

// Listener subscribes to a Redis channel and dispatches actions onto a Bus.
type Listener struct {
	client   *redis.Client
	channel  string
	bus      *formz.Bus
	logger   *zap.Logger
	onResult ResultHandler
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithLogger sets the structured logger. Default: no-op.
func WithLogger(logger *zap.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// WithResultHandler sets a callback run after each dispatched action.
func WithResultHandler(fn ResultHandler) ListenerOption {
	return func(l *Listener) {
		l.onResult = fn
	}
}

// NewListener creates a Listener for channel.
func NewListener(client *redis.Client, channel string, bus *formz.Bus, opts ...ListenerOption) *Listener {
	l := &Listener{
		client:  client,
		channel: channel,
		bus:     bus,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run subscribes and dispatches actions until ctx is canceled. Malformed
// messages are logged and skipped.
func (l *Listener) Run(ctx context.Context) error {
	pubsub := l.client.Subscribe(ctx, l.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", l.channel, err)
	}
	l.logger.Info("listening for form actions", zap.String("channel", l.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.Handle(ctx, []byte(msg.Payload))
		}
	}
}

// Handle decodes one message and dispatches it.
func (l *Listener) Handle(ctx context.Context, payload []byte) (formz.Issues, error) {
	var action Action
	if err := json.Unmarshal(payload, &action); err != nil {
		l.logger.Warn("malformed form action", zap.Error(err))
		return nil, fmt.Errorf("decode action: %w", err)
	}

	issues, err := l.dispatch(ctx, action)
	if err != nil {
		l.logger.Warn("form action failed",
			zap.String("type", string(action.Type)),
			zap.String("form_id", action.FormID),
			zap.Error(err),
		)
	} else {
		l.logger.Debug("form action dispatched",
			zap.String("type", string(action.Type)),
			zap.String("form_id", action.FormID),
			zap.Int("issues", len(issues)),
		)
	}
	if l.onResult != nil {
		l.onResult(action, issues, err)
	}
	return issues, err
}

func (l *Listener) dispatch(ctx context.Context, action Action) (formz.Issues, error) {
	if action.FormID == "" {
		return nil, ErrMissingFormID
	}
	switch action.Type {
	case ActionSetValue:
		return l.bus.SetFormValue(ctx, action.FormID, action.Value, action.Reset)
	case ActionSubmit:
		return l.bus.SubmitForm(ctx, action.FormID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action.Type)
	}
}

// Publish sends action on channel.
func Publish(ctx context.Context, client *redis.Client, channel string, action Action) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}
	if err := client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
