// Command queuetest enqueues a delivery message so the consumer path
// can be smoke-tested end to end.
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"guild-gateway/internal/config"
	"guild-gateway/internal/rabbitmq"
)

func main() {
	userID := flag.String("user", "", "recipient user id")
	content := flag.String("content", "ping from queuetest", "message content")
	flag.Parse()

	if *userID == "" {
		log.Fatal("usage: queuetest -user <id> [-content <text>]")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is not configured")
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.QueueName)
	if err != nil {
		log.Fatalf("Failed to create publisher: %v", err)
	}
	defer publisher.Close()

	if err := publisher.Publish(*userID, *content); err != nil {
		log.Fatalf("Failed to publish: %v", err)
	}

	log.Printf("Queued delivery message for user %s on %s", *userID, cfg.QueueName)
}
