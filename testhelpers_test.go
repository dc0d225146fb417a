//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/GearShare/service-rental/internal/application"
	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/domain/user"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/config"
	"github.com/GearShare/service-rental/internal/platform/database"
	"github.com/GearShare/service-rental/internal/platform/kafka"
	"github.com/GearShare/service-rental/internal/repository"
	"github.com/GearShare/service-rental/migrations"
)

const testTopicPrefix = "it."

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds the wired booking service and the repositories behind it.
type rentalStack struct {
	Service         *application.BookingService
	Users           *repository.GormUserRepository
	Items           *repository.GormItemRepository
	Listings        *repository.GormListingRepository
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers, applies the
// embedded migrations and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbCfg := config.DatabaseConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_rental",
		SSLMode:  "disable",
	}

	require.Eventually(t, func() bool {
		return database.RunMigrations(dbCfg.MigrationURL(), migrations.FS, log) == nil
	}, 30*time.Second, time.Second, "migrations did not apply")

	db, err := database.Connect(dbCfg, log)
	require.NoError(t, err, "failed to connect to PostgreSQL")

	// confluent-local runs KRaft without a separate zookeeper.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, testTopicPrefix+"booking.events")

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRentalStack wires the booking service onto Postgres and Kafka.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string) *rentalStack {
	t.Helper()
	logger := zap.NewNop()

	producer := kafka.NewProducer(brokers, testTopicPrefix, logger)
	listings := repository.NewGormListingRepository(db)
	svc := application.NewBookingService(
		repository.NewGormBookingRepository(db),
		listings,
		repository.NewGormTransactor(db),
		bookingDomain.NewDailyRatePricing(),
		producer,
		logger,
	)

	return &rentalStack{
		Service:         svc,
		Users:           repository.NewGormUserRepository(db),
		Items:           repository.NewGormItemRepository(db),
		Listings:        listings,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedUser stores a user holding roles and returns it as a caller.
func (s *rentalStack) seedUser(t *testing.T, roles ...auth.Role) auth.Caller {
	t.Helper()
	hash, err := auth.HashPassword("Secret123!")
	require.NoError(t, err)
	email := fmt.Sprintf("user-%s@gearshare.test", uuid.New().String()[:8])
	u, err := user.NewUser(email, "Test user", hash, roles)
	require.NoError(t, err)
	require.NoError(t, s.Users.Save(context.Background(), u))
	return auth.Caller{ID: u.ID(), Roles: u.Roles()}
}

// seedListing stores an item owned by owner and one active listing on it.
func (s *rentalStack) seedListing(t *testing.T, owner auth.Caller, pricePerDay, deposit int64) *catalog.Listing {
	t.Helper()
	ctx := context.Background()
	item, err := catalog.NewItem(owner.ID, catalog.ItemDetails{
		Title:     "Tent 3 persons",
		Category:  catalog.CategorySports,
		Condition: "GOOD",
	})
	require.NoError(t, err)
	require.NoError(t, s.Items.Save(ctx, item))

	listing, err := catalog.NewListing(item, catalog.ListingTerms{
		PricePerDay: money.FromUnits(pricePerDay, 0),
		Deposit:     money.FromUnits(deposit, 0),
		Location:    catalog.Location{City: "Bucharest"},
		Active:      true,
	})
	require.NoError(t, err)
	require.NoError(t, s.Listings.Save(ctx, listing))
	return listing
}

// consumeEvent reads from a Kafka topic until it finds an event of the
// expected type about subject.
func consumeEvent(t *testing.T, brokers []string, topic, expectedType, subject string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     fmt.Sprintf("test-assert-%s", uuid.New().String()[:8]),
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType && ce.Subject == subject {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
