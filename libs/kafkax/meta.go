package kafkax

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// Header keys shared by producers of booking events.
const (
	HeaderEventID   = "event_id"
	HeaderEventType = "event_type"
	HeaderRequestID = "x-request-id"
)

// EventMeta is the metadata a consumer needs for logging and de-duplication.
type EventMeta struct {
	EventID   string
	EventType string
	RequestID string
}

// ExtractEventMeta reads the canonical headers, falling back to the message key
// for the id and to the topic for the type.
func ExtractEventMeta(msg kafka.Message) EventMeta {
	meta := EventMeta{
		EventID:   HeaderValue(msg.Headers, HeaderEventID),
		EventType: HeaderValue(msg.Headers, HeaderEventType),
		RequestID: HeaderValue(msg.Headers, HeaderRequestID),
	}
	if meta.EventID == "" {
		meta.EventID = string(msg.Key)
	}
	if meta.EventType == "" {
		meta.EventType = msg.Topic
	}
	return meta
}

// HeaderValue returns the first header named key, or "".
func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
