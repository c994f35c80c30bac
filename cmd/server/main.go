package main

import (
	reservationhandler "bookable/internal/reservations/handler"
	reservationrepo "bookable/internal/reservations/repository"
	reservationservice "bookable/internal/reservations/service"
	reservationvalidator "bookable/internal/reservations/validator"
	thinghandler "bookable/internal/things/handler"
	thingrepo "bookable/internal/things/repository"
	thingservice "bookable/internal/things/service"
	thingvalidator "bookable/internal/things/validator"
	"bookable/pkg/app"
	"bookable/pkg/config"
	"bookable/pkg/kafka"
	kafka_config "bookable/pkg/kafka/config"
	kafka_middleware "bookable/pkg/kafka/middleware"
)

const ServiceName = "bookable"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookable server")

	things, reservations := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		thinghandler.NewThingHandler(things, cfg.Log),
		reservationhandler.NewReservationHandler(reservations, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (thingservice.ThingService, reservationservice.ReservationService) {
	things := thingservice.NewThingService(
		thingrepo.NewMongoThingRepository(cfg),
		thingvalidator.NewThingValidator(cfg.Log),
		cfg,
	)

	reservations := reservationservice.NewReservationService(
		reservationrepo.NewMongoReservationRepository(cfg),
		reservationrepo.NewMongoSlotClaimRepository(cfg),
		things,
		reservationvalidator.NewReservationValidator(cfg.Log),
		newPublisher(cfg),
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return things, reservations
}

// newPublisher wires the notification topic. The server boots without Kafka;
// events are simply not published until a broker is reachable at startup.
func newPublisher(cfg *config.Config) reservationservice.EventPublisher {
	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.NotifyTopic, cfg.NotifyDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, reservation events disabled", "error", err)
		return nil
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	return producer
}
