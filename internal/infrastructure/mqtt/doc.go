// Package mqtt provides MQTT client connectivity for the enigma2 bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The bridge publishes every item change as a retained state message and
// accepts command intents (remote-control key presses, zaps, on-screen
// messages) on per-device command topics:
//
//	enigma2/{device}/state/{item}      retained item state (JSON)
//	enigma2/{device}/command/remote    {"command": 105}
//	enigma2/{device}/command/zap       {"sref": "1:0:19:..."}
//	enigma2/{device}/command/message   {"text": "...", "type": 1, "timeout": 10}
//	enigma2/system/status              bridge online/offline (LWT)
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllCommands("livingroom"), 1,
//	    func(topic string, payload []byte) error {
//	        return dispatchCommand(topic, payload)
//	    })
//
//	topic := mqtt.Topics{}.ItemState("livingroom", "volume")
//	client.PublishRetained(topic, []byte(`{"value":35}`))
package mqtt
