// Package events listens for upstream change notifications on MQTT and
// drops cached dashboard responses when a source table changes.
package events

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// DefaultTopic is the wildcard the upstream change feed publishes under,
// one subtopic per table.
const DefaultTopic = "neocare/changes/#"

const (
	connectTimeout = 10 * time.Second
	clearTimeout   = 5 * time.Second
	disconnectMS   = 250
)

// Tables are the upstream tables the dashboards read from, directly or
// through the staffing and supply functions.
var Tables = map[string]bool{
	"admissions":           true,
	"alerts":               true,
	"beds":                 true,
	"counties":             true,
	"department_metrics":   true,
	"equipment":            true,
	"hospital_departments": true,
	"hospital_metrics":     true,
	"hospitals":            true,
	"lab_orders":           true,
	"lab_test_types":       true,
	"neocare_users":        true,
	"patients":             true,
	"supply_stock":         true,
	"vital_signs":          true,
	"ward_staffing":        true,
}

// Invalidator is satisfied by cache.Store.
type Invalidator interface {
	Clear(ctx context.Context) error
}

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
	QoS      byte
}

// Subscriber clears the response cache on every change message for a
// watched table. Messages are not forwarded anywhere else.
type Subscriber struct {
	cfg         Config
	client      mqtt.Client
	invalidator Invalidator
	logger      zerolog.Logger

	received    atomic.Int64
	invalidated atomic.Int64
}

func NewSubscriber(cfg Config, inv Invalidator, logger zerolog.Logger) *Subscriber {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	s := &Subscriber{
		cfg:         cfg,
		invalidator: inv,
		logger:      logger.With().Str("component", "events").Logger(),
	}
	s.client = mqtt.NewClient(s.clientOptions())
	return s
}

func (s *Subscriber) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	clientID := s.cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("neocare-%d", time.Now().UnixNano())
	}
	opts.SetClientID(clientID)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
	}
	if s.cfg.Password != "" {
		opts.SetPassword(s.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(connectTimeout)
	// A clean session forgets subscriptions, so subscribe on every connect.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		tok := c.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
			s.handle(msg.Topic(), msg.Payload())
		})
		s.confirmSubscribe(tok, connectTimeout)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn().Err(err).Msg("change feed connection lost")
	})
	return opts
}

// confirmSubscribe waits for the broker to acknowledge a subscription and
// logs the outcome. It reports whether the subscription is known to be active.
func (s *Subscriber) confirmSubscribe(tok mqtt.Token, timeout time.Duration) bool {
	if !tok.WaitTimeout(timeout) {
		s.logger.Warn().Str("topic", s.cfg.Topic).Dur("timeout", timeout).Msg("subscribe not acknowledged in time")
		return false
	}
	if err := tok.Error(); err != nil {
		s.logger.Error().Err(err).Str("topic", s.cfg.Topic).Msg("subscribe failed")
		return false
	}
	s.logger.Info().Str("topic", s.cfg.Topic).Msg("subscribed to change feed")
	return true
}

// Start connects to the broker and returns once the first connection
// succeeded. Reconnects happen in the background until ctx is done.
func (s *Subscriber) Start(ctx context.Context) error {
	tok := s.client.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to mqtt broker %s: timed out", s.cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("connect to mqtt broker %s: %w", s.cfg.Broker, err)
	}
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

func (s *Subscriber) Close() {
	if s.client.IsConnected() {
		s.client.Disconnect(disconnectMS)
	}
}

// Stats reports messages received and cache clears issued.
func (s *Subscriber) Stats() (received, invalidated int64) {
	return s.received.Load(), s.invalidated.Load()
}

func (s *Subscriber) handle(topic string, payload []byte) {
	s.received.Add(1)
	table := TableFromTopic(topic)
	if !Tables[table] {
		s.logger.Debug().Str("topic", topic).Msg("ignoring change for unwatched table")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), clearTimeout)
	defer cancel()
	if err := s.invalidator.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Str("table", table).Msg("cache invalidation failed")
		return
	}
	s.invalidated.Add(1)
	s.logger.Debug().Str("table", table).Int("payload_bytes", len(payload)).Msg("response cache cleared")
}

// TableFromTopic returns the last topic level, lower-cased.
// "neocare/changes/Vital_Signs" yields "vital_signs".
func TableFromTopic(topic string) string {
	topic = strings.TrimRight(topic, "/")
	if i := strings.LastIndexByte(topic, '/'); i >= 0 {
		topic = topic[i+1:]
	}
	return strings.ToLower(topic)
}
