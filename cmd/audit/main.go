package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dinebook/config"
	"dinebook/infras/kafka"
	availabilityModel "dinebook/internal/domains/availability/model"
	reservationModel "dinebook/internal/domains/reservation/model"
	"dinebook/shared/logger"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

const consumerGroupSuffix = ".audit"

// Audit tails the domain event topics and writes every event to the log.
func main() {
	logger.InitLogger()

	cfg := config.Get()

	logger.Configure(cfg)

	client := kafka.New(cfg)
	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group := cfg.Kafka.ConsumerGroup + consumerGroupSuffix

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.Consume(ctx, group, cfg.Kafka.Topics.Reservation, logReservationEvent)
	})

	g.Go(func() error {
		return client.Consume(ctx, group, cfg.Kafka.Topics.Availability, logAvailabilityEvent)
	})

	log.Info().
		Str("group", group).
		Strs("topics", []string{cfg.Kafka.Topics.Reservation, cfg.Kafka.Topics.Availability}).
		Msg("Audit consumer started")

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Audit consumer stopped")
	}

	log.Info().Msg("Audit consumer stopped")
}

func logReservationEvent(msg kafkaGo.Message) {
	key, event, err := kafka.DecodeKafkaMessage[reservationModel.Event](msg)
	if err != nil {
		log.Warn().Err(err).Int64("offset", msg.Offset).Msg("Skipping malformed reservation event")

		return
	}

	log.Info().
		Str("key", key).
		Str("type", event.Type).
		Str("reservation_id", event.ReservationID).
		Str("availability_id", event.AvailabilityID).
		Str("restaurant_id", event.RestaurantID).
		Str("diner_id", event.DinerID).
		Str("actor_id", event.ActorID).
		Time("occurred_at", event.OccurredAt).
		Msg("reservation event")
}

func logAvailabilityEvent(msg kafkaGo.Message) {
	key, event, err := kafka.DecodeKafkaMessage[availabilityModel.Event](msg)
	if err != nil {
		log.Warn().Err(err).Int64("offset", msg.Offset).Msg("Skipping malformed availability event")

		return
	}

	log.Info().
		Str("key", key).
		Str("type", event.Type).
		Str("availability_id", event.AvailabilityID).
		Str("restaurant_id", event.RestaurantID).
		Str("actor_id", event.ActorID).
		Time("occurred_at", event.OccurredAt).
		Msg("availability event")
}
