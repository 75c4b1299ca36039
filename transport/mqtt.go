// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/coremcp/mcpd/internal/mcplog"
)

// MQTT is a message-bus transport over a pair of MQTT topics: one
// subscribed to for incoming messages, one published to for outgoing
// ones. A server and its clients point the pair in opposite directions.
type MQTT struct {
	client    pahomqtt.Client
	subTopic  string
	pubTopic  string
	qos       byte
	clientKey string
	log       *mcplog.Logger

	stopped atomic.Bool
}

// MQTTConfig configures a broker connection and the transport's topic
// pair.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	SubscribeTopic string
	PublishTopic   string
	QoS            byte
	ConnectTimeout time.Duration
}

// DialMQTT connects to cfg.Broker and returns an MQTT transport ready to
// Start.
func DialMQTT(ctx context.Context, cfg MQTTConfig, log *mcplog.Logger) (*MQTT, error) {
	if log == nil {
		log = mcplog.Discard()
	}
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warn("mqtt: connection lost: %v", err)
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()

	done := make(chan struct{})
	go func() { token.Wait(); close(done) }()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("transport: mqtt connect %s: %w", cfg.Broker, token.Error())
	}

	return &MQTT{
		client:    client,
		subTopic:  cfg.SubscribeTopic,
		pubTopic:  cfg.PublishTopic,
		qos:       cfg.QoS,
		clientKey: cfg.Broker + "/" + cfg.SubscribeTopic,
		log:       log,
	}, nil
}

func (t *MQTT) Start(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) error {
	handler := func(_ pahomqtt.Client, msg pahomqtt.Message) {
		if t.stopped.Load() {
			return
		}
		onMessage(ctx, msg.Payload(), t.clientKey)
	}
	token := t.client.Subscribe(t.subTopic, t.qos, handler)
	token.Wait()
	if token.Error() != nil {
		err := fmt.Errorf("transport: mqtt subscribe %s: %w", t.subTopic, token.Error())
		if onError != nil {
			onError(err)
		}
		return err
	}
	return nil
}

func (t *MQTT) Send(ctx context.Context, body []byte) error {
	token := t.client.Publish(t.pubTopic, t.qos, false, body)
	done := make(chan struct{})
	go func() { token.Wait(); close(done) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}
	return token.Error()
}

func (t *MQTT) Stop() error {
	if !t.stopped.CompareAndSwap(false, true) {
		return nil
	}
	t.client.Unsubscribe(t.subTopic)
	t.client.Disconnect(250)
	return nil
}

// ClientKey returns the broker/topic pair identifying this transport.
func (t *MQTT) ClientKey() string { return t.clientKey }
