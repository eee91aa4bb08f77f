// Package mqtt publishes optimized plans for home-automation consumers.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/infra/logger"
)

// Config defines the connection parameters for the plan publisher.
type Config struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Broker      string `json:"broker" yaml:"broker"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
	QoS         byte   `json:"qos" yaml:"qos"`
	Retain      bool   `json:"retain" yaml:"retain"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "lankawattwise"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "lww"
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PlanPublisher pushes each user's optimized plan to
// <prefix>/<userId>/plan so appliance controllers can subscribe.
type PlanPublisher struct {
	cli pahoClient
	cfg Config
	log logger.Logger
}

// NewPlanPublisher connects to the broker.
func NewPlanPublisher(cfg Config) (*PlanPublisher, error) {
	cfg.SetDefaults()
	log := logger.New("plan-publisher")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PlanPublisher{cli: c, cfg: cfg, log: log}, nil
}

// PublishPlan serializes the plan and publishes it on the user's topic.
func (p *PlanPublisher) PublishPlan(userID, date string, plan []model.Recommendation) error {
	payload, err := json.Marshal(struct {
		UserID string                 `json:"userId"`
		Date   string                 `json:"date"`
		Plan   []model.Recommendation `json:"plan"`
	}{UserID: userID, Date: date, Plan: plan})
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%s/plan", p.cfg.TopicPrefix, userID)
	token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *PlanPublisher) Close() {
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
