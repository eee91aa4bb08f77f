package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankawattwise/lankawattwise/core/model"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connected bool
	topic     string
	payload   []byte
	qos       byte
	retained  bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() paho.Token {
	c.connected = true
	return &fakeToken{}
}
func (c *fakeClient) Disconnect(uint) { c.connected = false }
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topic = topic
	c.qos = qos
	c.retained = retained
	c.payload = payload.([]byte)
	return &fakeToken{}
}

func TestPublishPlan(t *testing.T) {
	fake := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fake }
	defer func() { newMQTTClient = orig }()

	pub, err := NewPlanPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883", QoS: 1})
	require.NoError(t, err)

	plan := []model.Recommendation{
		{ID: "r1", TaskID: "washer", SuggestedStart: "2025-06-01T22:30:00", DurationMinutes: 60},
	}
	require.NoError(t, pub.PublishPlan("u1", "2025-06-01", plan))
	assert.Equal(t, "lww/u1/plan", fake.topic)
	assert.Equal(t, byte(1), fake.qos)

	var decoded struct {
		UserID string                 `json:"userId"`
		Date   string                 `json:"date"`
		Plan   []model.Recommendation `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(fake.payload, &decoded))
	assert.Equal(t, "u1", decoded.UserID)
	assert.Len(t, decoded.Plan, 1)
	assert.Equal(t, "washer", decoded.Plan[0].TaskID)

	pub.Close()
	assert.False(t, fake.connected)
}
