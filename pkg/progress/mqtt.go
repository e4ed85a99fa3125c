package progress

import (
	"fmt"
	"net/url"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// DefaultTopic is where phase events are published unless the broker URL
// path overrides it.
const DefaultTopic = "xsboard/progress/phase"

// MQTT publishes phase events to a broker so an external UI can follow a
// workflow. Delivery is best effort at QoS 0; publish tokens are not
// waited for.
type MQTT struct {
	client paho.Client
	topic  string
}

// DialMQTT connects to a broker URL of the form
// mqtt://host:port[/topic/prefix][?client-id=name].
func DialMQTT(brokerURL string) (*MQTT, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("progress: broker url: %w", err)
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	topic := strings.TrimPrefix(u.Path, "/")
	if topic == "" {
		topic = DefaultTopic
	}

	opts := paho.NewClientOptions().
		AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if id := u.Query().Get("client-id"); id != "" {
		opts.SetClientID(id)
	}
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		glog.Warningf("progress: broker connection lost: %v", err)
	})

	m := &MQTT{client: paho.NewClient(opts), topic: topic}
	token := m.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("progress: connect broker: %w", err)
	}
	glog.V(1).Infof("progress: publishing phases to %s on %s", m.topic, u.Host)
	return m, nil
}

func (m *MQTT) Publish(phase string) {
	m.client.Publish(m.topic, 0, false, []byte(phase))
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	m.client.Disconnect(0)
	return nil
}
