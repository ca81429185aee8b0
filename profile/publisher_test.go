package profile

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func metricsRecord() *AnalysisRecord {
	return &AnalysisRecord{
		ID: "abc123",
		Report: &AnalysisReport{
			Path:      PathRANSAC,
			Transform: Translation(2, -3),
			Metrics: &DeviationMetrics{
				MaxDeviation:  4.2,
				MeanDeviation: 1.1,
				RMSDeviation:  1.4,
				P95Deviation:  3.0,
			},
		},
	}
}

func TestPublishMetrics(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)
	pub := NewPublisher(client, "gauge")

	if err := pub.PublishMetrics(metricsRecord()); err != nil {
		t.Fatalf("PublishMetrics() error = %v", err)
	}

	msgs := client.GetPublishedMessages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].Topic != "gauge/metrics" {
		t.Errorf("topic = %q, want gauge/metrics", msgs[0].Topic)
	}
	if !msgs[0].Retain {
		t.Error("metrics message must be retained")
	}

	var decoded MetricsMessage
	if err := json.Unmarshal(msgs[0].Payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.ID != "abc123" {
		t.Errorf("ID = %q, want abc123", decoded.ID)
	}
	if decoded.Path != PathRANSAC {
		t.Errorf("Path = %q, want %q", decoded.Path, PathRANSAC)
	}
	if decoded.Metrics == nil || decoded.Metrics.MaxDeviation != 4.2 {
		t.Errorf("metrics not carried: %+v", decoded.Metrics)
	}
	if decoded.Transform.Tx != 2 || decoded.Transform.Ty != -3 {
		t.Errorf("transform not carried: %+v", decoded.Transform)
	}

	last, ok := pub.LastMessage()
	if !ok || last.ID != "abc123" {
		t.Errorf("LastMessage() = %+v, %v", last, ok)
	}
}

func TestPublishMetricsNotConnected(t *testing.T) {
	pub := NewPublisher(NewMockClient(), "gauge")
	if err := pub.PublishMetrics(metricsRecord()); err == nil {
		t.Error("expected an error when the client is not connected")
	}

	pub = NewPublisher(nil, "gauge")
	if err := pub.PublishMetrics(metricsRecord()); err == nil {
		t.Error("expected an error with a nil client")
	}
}

func TestPublishMetricsPublishError(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)
	client.SetPublishError(errors.New("broker rejected"))

	pub := NewPublisher(client, "gauge")
	err := pub.PublishMetrics(metricsRecord())
	if err == nil || !strings.Contains(err.Error(), "broker rejected") {
		t.Errorf("error = %v, want the broker error wrapped", err)
	}
}

func TestPublishMetricsNilRecord(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)
	pub := NewPublisher(client, "gauge")

	if err := pub.PublishMetrics(nil); err == nil {
		t.Error("expected an error for a nil record")
	}
	if err := pub.PublishMetrics(&AnalysisRecord{ID: "x"}); err == nil {
		t.Error("expected an error for a record without a report")
	}
	if _, ok := pub.LastMessage(); ok {
		t.Error("failed publishes must not become the last message")
	}
}

func TestPublisherQoSAndRetain(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)
	pub := NewPublisher(client, "gauge")
	pub.SetQoS(1)
	pub.SetRetain(false)
	pub.SetQoS(7) // out of range, ignored

	if err := pub.PublishMetrics(metricsRecord()); err != nil {
		t.Fatalf("PublishMetrics() error = %v", err)
	}
	msgs := client.GetPublishedMessages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].QoS != 1 {
		t.Errorf("QoS = %d, want 1", msgs[0].QoS)
	}
	if msgs[0].Retain {
		t.Error("retain should have been disabled")
	}
}
