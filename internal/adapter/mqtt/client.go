// Package mqtt owns the single broker connection: the telemetry topic
// subscription, delivery into the ingestion pipeline and outbound command
// publishing. Nobody outside this package sees a paho callback.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/liftops/lift-telemetry-service/config"
)

// ErrNotConnected is returned by Publish while the broker link is down.
var ErrNotConnected = errors.New("mqtt: not connected")

// MessageSink receives every inbound delivery. Calls happen synchronously on
// the client's router goroutine, so deliveries arrive one at a time and in
// subscription order.
type MessageSink interface {
	Ingest(topic, payload string)
}

type Client struct {
	paho        paho.Client
	sink        MessageSink
	eventsTopic string
	logger      *slog.Logger
}

// NewClient builds the broker client. The connection retries forever, both
// on first connect and after a drop, and the telemetry subscription is
// re-established inside the OnConnect hook so a broker restart needs no
// intervention.
func NewClient(cfg *config.Config, sink MessageSink, logger *slog.Logger) *Client {
	c := &Client{
		sink:        sink,
		eventsTopic: cfg.Broker.EventsTopic,
		logger:      logger,
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker.URL).
		SetClientID(cfg.Broker.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(30 * time.Second).
		SetOrderMatters(true).
		SetKeepAlive(30 * time.Second)

	opts.SetOnConnectHandler(func(pc paho.Client) {
		logger.Info("broker connected", slog.String("url", cfg.Broker.URL))
		c.subscribe(pc)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("broker connection lost", slog.Any("error", err))
	})

	c.paho = paho.NewClient(opts)
	return c
}

func (c *Client) subscribe(pc paho.Client) {
	token := pc.Subscribe(c.eventsTopic, 0, func(_ paho.Client, msg paho.Message) {
		c.sink.Ingest(msg.Topic(), string(msg.Payload()))
	})
	go func() {
		if token.Wait() && token.Error() != nil {
			c.logger.Error("subscribe failed",
				slog.String("topic", c.eventsTopic),
				slog.Any("error", token.Error()),
			)
		}
	}()
}

// Start kicks off the connect loop and returns immediately; with retry
// enabled the loop keeps trying in the background until the broker appears.
func (c *Client) Start(ctx context.Context) error {
	token := c.paho.Connect()
	go func() {
		if token.Wait() && token.Error() != nil {
			c.logger.Error("broker connect failed", slog.Any("error", token.Error()))
		}
	}()
	return nil
}

func (c *Client) Stop(ctx context.Context) error {
	c.paho.Disconnect(250)
	return nil
}

// Publish sends payload to topic and reports the outcome synchronously.
// While the link is down it fails fast with ErrNotConnected instead of
// queueing commands for an unknown later.
func (c *Client) Publish(ctx context.Context, topic, payload string) error {
	if !c.paho.IsConnectionOpen() {
		return ErrNotConnected
	}
	token := c.paho.Publish(topic, 0, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %q: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
