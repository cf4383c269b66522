package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// SubscriberMetrics counts trigger outcomes.
type SubscriberMetrics interface {
	TriggerHandled(kind string)
	TriggerFailed(kind string)
	HandleObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// Subscriber listens for event lifecycle triggers on NATS and drives the
// Manager. Subjects are <prefix>.created, <prefix>.updated, <prefix>.deleted;
// outcomes are published to <prefix>.processed and <prefix>.failed.
type Subscriber struct {
	nc      *nats.Conn
	manager *Manager
	prefix  string
	metrics SubscriberMetrics
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS with reconnect logging.
func NewSubscriber(url, prefix string, m *Manager, metrics SubscriberMetrics) (*Subscriber, error) {
	nc, err := nats.Connect(url,
		nats.Name("railmatch"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if metrics != nil {
				metrics.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if metrics != nil {
				metrics.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if metrics != nil {
				metrics.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		metrics.NATSSetConnected(true)
	}
	return &Subscriber{nc: nc, manager: m, prefix: prefix, metrics: metrics}, nil
}

// Start subscribes to the three trigger subjects.
func (s *Subscriber) Start(ctx context.Context) error {
	for kind, handle := range map[string]func(context.Context, *nats.Msg) error{
		"created": s.onCreated,
		"updated": s.onUpdated,
		"deleted": s.onDeleted,
	} {
		kind, handle := kind, handle
		sub, err := s.nc.Subscribe(s.prefix+"."+kind, func(msg *nats.Msg) {
			start := time.Now()
			err := handle(ctx, msg)
			if s.metrics != nil {
				s.metrics.HandleObserve(time.Since(start))
				if err != nil {
					s.metrics.TriggerFailed(kind)
				} else {
					s.metrics.TriggerHandled(kind)
				}
			}
			if err != nil {
				log.Printf("handle %s: %v", kind, err)
				s.notify("failed", map[string]string{"kind": kind, "error": err.Error()})
			}
		})
		if err != nil {
			return fmt.Errorf("subscribe %s.%s: %w", s.prefix, kind, err)
		}
		s.subs = append(s.subs, sub)
	}
	log.Printf("subscribed to %s.{created,updated,deleted}", s.prefix)
	return nil
}

func (s *Subscriber) onCreated(ctx context.Context, msg *nats.Msg) error {
	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return &InputError{Msg: "bad created payload: " + err.Error()}
	}
	res, err := s.manager.HandleCreated(ctx, ev)
	if err != nil {
		return err
	}
	s.notifyResult(res)
	return nil
}

func (s *Subscriber) onUpdated(ctx context.Context, msg *nats.Msg) error {
	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return &InputError{Msg: "bad updated payload: " + err.Error()}
	}
	res, err := s.manager.HandleUpdated(ctx, ev)
	if err != nil {
		return err
	}
	s.notifyResult(res)
	return nil
}

func (s *Subscriber) onDeleted(ctx context.Context, msg *nats.Msg) error {
	var payload struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return &InputError{Msg: "bad deleted payload: " + err.Error()}
	}
	if payload.EventID == "" {
		return &InputError{Msg: "missing event id"}
	}
	if err := s.manager.HandleDeleted(ctx, payload.EventID); err != nil {
		return err
	}
	s.notify("processed", map[string]string{"event_id": payload.EventID, "kind": "deleted"})
	return nil
}

func (s *Subscriber) notifyResult(res Result) {
	s.notify("processed", map[string]any{
		"event_id":    res.EventID,
		"path":        res.Path,
		"success":     res.Success(),
		"itineraries": len(res.Options.Itineraries),
		"errors":      len(res.Errors),
	})
}

func (s *Subscriber) notify(subject string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.nc.Publish(s.prefix+"."+subject, b); err != nil {
		log.Printf("nats publish %s.%s: %v", s.prefix, subject, err)
	}
}

// Close drains the subscriptions and the connection.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	if s.nc != nil {
		_ = s.nc.Drain()
		s.nc.Close()
	}
}
