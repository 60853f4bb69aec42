package main

import (
	"slotbook/internal/bookings/events"
	bookinghandler "slotbook/internal/bookings/handler"
	bookingrepository "slotbook/internal/bookings/repository"
	bookingservice "slotbook/internal/bookings/service"
	"slotbook/internal/bookings/validator"
	calendargateway "slotbook/internal/calendar/gateway"
	calendarhandler "slotbook/internal/calendar/handler"
	calendarrepository "slotbook/internal/calendar/repository"
	calendarservice "slotbook/internal/calendar/service"
	"slotbook/pkg/app"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	"slotbook/pkg/contracts"
	"slotbook/pkg/kafka"
	kafka_config "slotbook/pkg/kafka/config"
	kafka_middleware "slotbook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Bookings service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	serverApp := app.NewApplication(cfg)
	handlers := initServices(cfg, serverApp)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) []contracts.Handler {
	clk := clock.System()

	linkRepo := calendarrepository.NewMongoLinkRepository(cfg)
	gw := calendargateway.New(cfg.CalendarAPIBaseURL, cfg.CalendarRequestTimeout, cfg.Log)
	checker := calendarservice.NewChecker(linkRepo, gw, clk, cfg.Log)
	calendars := calendarservice.NewCalendarService(linkRepo, gw, clk, cfg.Log)

	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepository.NewBookingLockRepository(cfg)
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	publisher := initPublisher(cfg, serverApp)

	bookingSvc := bookingservice.NewBookingService(
		cfg,
		bookingRepo,
		lockRepo,
		bookingValidator,
		checker,
		calendars,
		publisher,
		clk,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		bookinghandler.NewBookingHandler(bookingSvc, cfg.Log),
		calendarhandler.NewCalendarHandler(calendars, cfg.Log),
	}
}

// initPublisher wires the optional booking event stream. When Kafka is
// disabled or the producer cannot start, the service falls back to a no-op
// publisher; booking admission never depends on the event stream.
func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka event stream disabled")
		return events.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic, kafkaCfg.BookingEventsDLQ)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, continuing without event stream", "error", err)
		return events.NoopPublisher{}
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Kafka event stream enabled",
		"brokers", kafkaCfg.Brokers,
		"topic", kafkaCfg.BookingEventsTopic,
	)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
