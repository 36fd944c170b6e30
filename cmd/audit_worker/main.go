package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/user-management-api/config"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

// audit_worker drains the audit queue and writes each event to the structured log.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if !cfg.AuditEnabled {
		log.Println("AUDIT_ENABLED=false; audit worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQAuditQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	logger := helpers.NewLogger(cfg.AppName+"-audit", cfg.Env)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQAuditQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQAuditQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			if err := handle(logger, msg.Body); err != nil {
				logger.WithError(err).WithField("message_id", msg.MessageId).Warn("dropping malformed audit message")
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQAuditQueue).Info("audit worker listening")
	<-stop
	logger.Info("shutting down...")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
