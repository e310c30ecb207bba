package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oarkflow/productetl/pkg/config"
)

const (
	PostgresImage = "postgres:16-alpine"
	MongoImage    = "mongo:7"
)

var (
	postgresCfg  config.Database
	postgresOnce sync.Once
	postgresErr  error

	mongoCfg  config.Mongo
	mongoOnce sync.Once
	mongoErr  error
)

// Postgres returns connection settings for a PostgreSQL container shared by
// every test in the run.
func Postgres(t *testing.T) config.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
	postgresOnce.Do(func() {
		postgresCfg, postgresErr = startPostgres()
	})
	if postgresErr != nil {
		t.Fatalf("Failed to start postgres container: %v", postgresErr)
	}
	return postgresCfg
}

// Mongo returns connection settings for a shared MongoDB container.
func Mongo(t *testing.T) config.Mongo {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
	mongoOnce.Do(func() {
		mongoCfg, mongoErr = startMongo()
	})
	if mongoErr != nil {
		t.Fatalf("Failed to start mongo container: %v", mongoErr)
	}
	return mongoCfg
}

func startPostgres() (config.Database, error) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "products",
			"POSTGRES_USER":     "daria",
			"POSTGRES_PASSWORD": "daria1234",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, host, err := start(ctx, req)
	if err != nil {
		return config.Database{}, err
	}
	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return config.Database{}, fmt.Errorf("failed to get container port: %w", err)
	}
	port := mapped.Int()
	return config.Database{
		Driver:       "postgres",
		Host:         host,
		Port:         port,
		Username:     "daria",
		Password:     "daria1234",
		Database:     "products",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}, nil
}

func startMongo() (config.Mongo, error) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        MongoImage,
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForLog("Waiting for connections").
			WithStartupTimeout(60 * time.Second),
	}
	container, host, err := start(ctx, req)
	if err != nil {
		return config.Mongo{}, err
	}
	mapped, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return config.Mongo{}, fmt.Errorf("failed to get container port: %w", err)
	}
	port := mapped.Int()
	return config.Mongo{
		URI:        fmt.Sprintf("mongodb://%s:%d/", host, port),
		Host:       host,
		Port:       port,
		Database:   "Amazon",
		Collection: "Products",
	}, nil
}

func start(ctx context.Context, req testcontainers.ContainerRequest) (testcontainers.Container, string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start %s: %w", req.Image, err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get container host: %w", err)
	}
	return container, host, nil
}
