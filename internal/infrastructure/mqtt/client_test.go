package mqtt

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/nerrad567/enigma2-bridge/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
// Broker-backed tests require a running Mosquitto at 127.0.0.1:1883 and
// skip themselves when none is reachable.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "enigma2-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// requireBroker skips the test when no local broker is listening.
func requireBroker(t *testing.T) {
	t.Helper()

	conn, err := net.DialTimeout("tcp", "127.0.0.1:1883", 200*time.Millisecond)
	if err != nil {
		t.Skip("no MQTT broker at 127.0.0.1:1883")
	}
	conn.Close() //nolint:errcheck // reachability check only
}

func TestConnect(t *testing.T) {
	requireBroker(t)

	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	requireBroker(t)

	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close() //nolint:errcheck // Deliberate disconnect

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishValidation(t *testing.T) {
	client := &Client{cfg: testConfig()}

	tests := []struct {
		name    string
		topic   string
		qos     byte
		wantErr error
	}{
		{"empty topic", "", 1, ErrInvalidTopic},
		{"invalid qos", "enigma2/test", 3, ErrInvalidQoS},
		{"not connected", "enigma2/test", 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, []byte("x"), tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}

	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(empty topic) error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("enigma2/test", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe(qos 3) error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Subscribe("enigma2/test", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe(nil handler) error = %v, want ErrSubscribeFailed", err)
	}
	if err := client.Subscribe("enigma2/test", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe(disconnected) error = %v, want ErrNotConnected", err)
	}
}

func TestPublishRoundtrip(t *testing.T) {
	requireBroker(t)

	cfg := testConfig()
	cfg.Broker.ClientID = "enigma2-test-roundtrip"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	topic := Topics{}.ItemState("testbox", "volume")
	received := make(chan string, 1)

	err = client.Subscribe(topic, 1, func(_ string, payload []byte) error {
		select {
		case received <- string(payload):
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.Publish(topic, []byte(`{"value":35}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-received:
		if msg != `{"value":35}` {
			t.Errorf("received %q, want %q", msg, `{"value":35}`)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for message")
	}
}

func TestTopics(t *testing.T) {
	tests := []struct {
		name     string
		build    func() string
		expected string
	}{
		{
			name:     "ItemState",
			build:    func() string { return Topics{}.ItemState("livingroom", "volume") },
			expected: "enigma2/livingroom/state/volume",
		},
		{
			name:     "Command",
			build:    func() string { return Topics{}.Command("livingroom", "remote") },
			expected: "enigma2/livingroom/command/remote",
		},
		{
			name:     "Availability",
			build:    func() string { return Topics{}.Availability("livingroom") },
			expected: "enigma2/livingroom/availability",
		},
		{
			name:     "SystemStatus",
			build:    func() string { return Topics{}.SystemStatus() },
			expected: "enigma2/system/status",
		},
		{
			name:     "AllCommands",
			build:    func() string { return Topics{}.AllCommands("livingroom") },
			expected: "enigma2/livingroom/command/+",
		},
		{
			name:     "AllStates",
			build:    func() string { return Topics{}.AllStates("livingroom") },
			expected: "enigma2/livingroom/state/+",
		},
		{
			name:     "AllTopics",
			build:    func() string { return Topics{}.AllTopics() },
			expected: "enigma2/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build(); got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}
