// Command sendalert publishes a test alert payload to the channel topic, in
// the exact wire format the ingestor consumes: a marker first line followed
// by the JSON body.
//
// Usage:
//
//	go run ./cmd/sendalert \
//	  -brokers localhost:9092 -topic varta-alerts \
//	  -level MEDIUM -regions "Одеська область" \
//	  -summary "Загроза застосування БпЛА"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

type payload struct {
	Status       string   `json:"status"`
	Level        string   `json:"level"`
	Regions      []string `json:"regions"`
	Summary      string   `json:"summary"`
	OriginalText string   `json:"original_text,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated channel brokers")
	topic := flag.String("topic", "varta-alerts", "channel topic")
	status := flag.String("status", "ok", "payload status (use \"ignore\" for a suppressible event)")
	level := flag.String("level", "LOW", "severity level: LOW, MEDIUM, HIGH, CRITICAL")
	regions := flag.String("regions", "", "comma-separated region names")
	summary := flag.String("summary", "Тестове повідомлення", "display summary")
	original := flag.String("original", "", "original source text")
	flag.Parse()

	p := payload{
		Status:       *status,
		Level:        *level,
		Summary:      *summary,
		OriginalText: *original,
	}
	if *regions != "" {
		p.Regions = strings.Split(*regions, ",")
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	text := "json\n" + string(body)

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		RequiredAcks: kafkago.RequireAll,
	}
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := writer.WriteMessages(ctx, kafkago.Message{
		Value: []byte(text),
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}

	fmt.Printf("published %s alert to %s\n", p.Level, *topic)
	return nil
}
