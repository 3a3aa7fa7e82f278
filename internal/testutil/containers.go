package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/tevor-api/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Default images per database type
const (
	PostgresImage = "postgres:17-alpine"
	MariaDBImage  = "mariadb:11"
)

const (
	containerDatabase = "tevor"
	containerUser     = "tevor"
	containerPassword = "tevor-secret"
)

// DBContainer is a running database server and the config that reaches it
type DBContainer struct {
	Container testcontainers.Container
	Config    *config.Config
}

// Terminate stops and removes the container
func (c *DBContainer) Terminate(ctx context.Context) error {
	if c == nil || c.Container == nil {
		return nil
	}
	return c.Container.Terminate(ctx)
}

// StartDatabase starts a postgres or mariadb container and returns a config
// pointing at its mapped port. An empty imageName selects the default image.
func StartDatabase(ctx context.Context, dbType, imageName string) (*DBContainer, error) {
	var (
		port    string
		env     map[string]string
		dataDir string
		waitFor wait.Strategy
	)

	switch dbType {
	case "postgres", "postgresql":
		dbType = "postgres"
		port = "5432"
		if imageName == "" {
			imageName = PostgresImage
		}
		env = map[string]string{
			"POSTGRES_USER":     containerUser,
			"POSTGRES_PASSWORD": containerPassword,
			"POSTGRES_DB":       containerDatabase,
		}
		dataDir = "/var/lib/postgresql/data"
		// postgres restarts once after init, the second message is the real one
		waitFor = wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second)

	case "mysql", "mariadb":
		dbType = "mysql"
		port = "3306"
		if imageName == "" {
			imageName = MariaDBImage
		}
		env = map[string]string{
			"MARIADB_ROOT_PASSWORD": containerPassword,
			"MARIADB_DATABASE":      containerDatabase,
			"MARIADB_USER":          containerUser,
			"MARIADB_PASSWORD":      containerPassword,
		}
		dataDir = "/var/lib/mysql"

	default:
		return nil, fmt.Errorf("no container support for database type: %s", dbType)
	}

	tcpPort, err := nat.NewPort("tcp", port)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}
	if waitFor == nil {
		waitFor = wait.ForListeningPort(tcpPort).WithStartupTimeout(60 * time.Second)
	}

	if ok, err := imageExists(ctx, imageName); err == nil && !ok {
		fmt.Printf("Image %s not present locally, pulling...\n", imageName)
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        imageName,
			ExposedPorts: []string{string(tcpPort)},
			Env:          env,
			HostConfigModifier: func(hostConfig *container.HostConfig) {
				// Throwaway databases, keep the data in memory
				hostConfig.Tmpfs = map[string]string{dataDir: "rw"}
			},
			WaitingFor: waitFor,
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", imageName, err)
	}
	dbc := &DBContainer{Container: c}

	host, err := c.Host(ctx)
	if err != nil {
		_ = dbc.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, tcpPort)
	if err != nil {
		_ = dbc.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	dbc.Config = &config.Config{
		DBType:            dbType,
		DBHost:            host,
		DBPort:            mapped.Port(),
		DBDatabase:        containerDatabase,
		DBUser:            containerUser,
		DBPassword:        containerPassword,
		DBConnectionLimit: 10,
		DBLogLevel:        "silent",
		AuthHeader:        "x-tevor-cn",
	}

	if dbType == "mysql" {
		if err := waitForMySQL(ctx, dbc.Config); err != nil {
			_ = dbc.Terminate(ctx)
			return nil, err
		}
	}

	return dbc, nil
}

// waitForMySQL pings until the server accepts the application user, the
// listening port opens before the init scripts have run.
func waitForMySQL(ctx context.Context, cfg *config.Config) error {
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBDatabase))
	if err != nil {
		return fmt.Errorf("failed to open mysql for readiness check: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("mysql not ready after 30 seconds: %w", err)
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}
