package profile

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MetricsMessage is the payload published after each sample check.
type MetricsMessage struct {
	ID        string            `json:"id"`
	Path      AlignPath         `json:"path"`
	Metrics   *DeviationMetrics `json:"metrics"`
	Transform AffineMatrix      `json:"transform"`
	Timestamp int64             `json:"timestamp"`
}

// Publisher publishes deviation results to MQTT after each sample
// curve is checked against the baseline.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	last          *MetricsMessage
	mu            sync.RWMutex
}

// NewPublisher creates a metrics publisher. If client is nil,
// publishing is disabled (for testing).
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if env := os.Getenv("MQTT_PUBLISH_PREFIX"); env != "" {
		prefix = env
	}
	if prefix == "" {
		prefix = "profilegauge"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,    // fire and forget
		retain:        true, // retain latest result
	}
}

// PublishMetrics publishes a completed analysis to
// {prefix}/metrics and remembers it as the latest result.
func (p *Publisher) PublishMetrics(rec *AnalysisRecord) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}
	if rec == nil || rec.Report == nil {
		return fmt.Errorf("nothing to publish")
	}

	msg := &MetricsMessage{
		ID:        rec.ID,
		Path:      rec.Report.Path,
		Metrics:   rec.Report.Metrics,
		Transform: rec.Report.Transform,
		Timestamp: time.Now().Unix(),
	}

	p.mu.Lock()
	p.last = msg
	p.mu.Unlock()

	topic := fmt.Sprintf("%s/metrics", p.publishPrefix)
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	if msg.Metrics != nil {
		log.Printf("[MQTT] published metrics for %s: max=%.2fpx mean=%.2fpx path=%s",
			msg.ID, msg.Metrics.MaxDeviation, msg.Metrics.MeanDeviation, msg.Path)
	} else {
		log.Printf("[MQTT] published result for %s: no metrics, path=%s", msg.ID, msg.Path)
	}
	return nil
}

// LastMessage returns the most recently published metrics message.
func (p *Publisher) LastMessage() (*MetricsMessage, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil, false
	}
	copy := *p.last
	return &copy, true
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
