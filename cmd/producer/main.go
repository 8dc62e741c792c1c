package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	broker   = flag.String("broker", "localhost:9092", "Kafka broker address")
	topic    = flag.String("topic", "sales", "Kafka topic to write to")
	interval = flag.Duration("interval", time.Second, "Delay between messages")
)

// SaleMessage matches the feature names used in configs/config.dev.yaml.
type SaleMessage struct {
	Timestamp time.Time `json:"timestamp"`
	SKU       string    `json:"sku"`
	UnitsSold *float64  `json:"units_sold"`
	Price     *float64  `json:"price"`
}

func main() {
	flag.Parse()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(*broker),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("Error closing kafka writer: %v", err)
		}
	}()
	log.Printf("Starting sample producer for topic: %s on broker: %s", *topic, *broker)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for step := 0; ; step++ {
		select {
		case <-ticker.C:
			payload, err := json.Marshal(generateSale(rng, step))
			if err != nil {
				log.Printf("Error marshalling message: %v", err)
				continue
			}
			if err := writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error writing message: %v", err)
			}

		case <-ctx.Done():
			log.Println("Producer loop stopped.")
			return
		}
	}
}

// generateSale emits no units for the first steps (a leading missing run),
// then a weekly demand pattern with occasional zero-sale steps.
func generateSale(rng *rand.Rand, step int) SaleMessage {
	msg := SaleMessage{
		Timestamp: time.Now(),
		SKU:       "SKU-001",
	}
	if step < 10 {
		return msg
	}

	units := 0.0
	if rng.Float64() > 0.2 {
		weekly := 1 + 0.5*math.Sin(2*math.Pi*float64(step%7)/7)
		units = math.Round(weekly * (5 + rng.NormFloat64()))
		units = math.Max(units, 0)
	}
	price := 9.99 + rng.Float64()
	msg.UnitsSold = &units
	msg.Price = &price
	return msg
}
