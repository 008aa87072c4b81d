package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airport/config"
	"github.com/Domenick1991/airport/internal/email"
	"github.com/Domenick1991/airport/internal/kafka"
	"github.com/Domenick1991/airport/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Color: cfg.Log.Color})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.OrdersTopic
	}
	if topic == "" {
		log.Fatal("worker", "kafka.notifications_topic or kafka.orders_topic must be set")
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, log)
	defer consumer.Close()

	sender := email.NewSender(log)

	log.Infof("worker", "consuming %s", topic)
	if err := consumer.ConsumeOrders(ctx, sender.Send); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("worker", "consumer stopped: %v", err)
		return
	}
	log.Info("worker", "shutting down")
}
