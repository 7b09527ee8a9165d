package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// viewCounter mirrors the analytics page-view row for exercising upserts.
type viewCounter struct {
	Path      string `gorm:"primaryKey;size:512"`
	Count     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (viewCounter) TableName() string { return "view_counters" }

// PostgresContainer represents a Postgres container for testing
type PostgresContainer struct {
	testcontainers.Container
	Config Config
	Host   string
	Port   string
}

// setupPostgresContainer sets up a Postgres container for testing
func setupPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	portBindings := nat.PortMap{
		"5432/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}
	portStr = mappedPort.Port()

	if err := waitForPostgresReady(host, portStr, "testuser", "testpass", "testdb", 30*time.Second); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("postgres container not ready: %w", err)
	}

	config := Config{
		Connection: Connection{
			Host:     host,
			Port:     portStr,
			User:     "testuser",
			Password: "testpass",
			DbName:   "testdb",
			SSLMode:  "disable",
		},
	}

	return &PostgresContainer{
		Container: pgContainer,
		Config:    config,
		Host:      host,
		Port:      portStr,
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = addr.Close()
	}()

	return addr.Addr().(*net.TCPAddr).Port, nil
}

func newIntegrationLogger(t *testing.T) *MockLogger {
	ctrl := gomock.NewController(t)
	mockLogger := NewMockLogger(ctrl)

	// Fatal must not kill the test run.
	mockLogger.EXPECT().Fatal(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(msg string, err error, fields ...map[string]interface{}) {
			t.Logf("FATAL: %s, Error: %v", msg, err)
		}).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return mockLogger
}

// TestPostgresWithFXModule exercises the client through the FX module the
// application uses.
func TestPostgresWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	mockLogger := newIntegrationLogger(t)

	var pg *Postgres
	app := fxtest.New(t,
		fx.Provide(
			func() Config { return pgContainer.Config },
			func() Logger { return mockLogger },
		),
		FXModule,
		fx.Populate(&pg),
	)

	err = app.Start(ctx)
	require.NoError(t, err)

	require.NotNil(t, pg)
	db := pg.DB()
	require.NotNil(t, db)

	var result int
	err = db.Raw("SELECT 1").Scan(&result).Error
	require.NoError(t, err)
	assert.Equal(t, 1, result)

	require.NoError(t, pg.Migrate(&viewCounter{}))

	t.Run("CounterCRUD", func(t *testing.T) {
		ctx := context.Background()

		row := viewCounter{Path: "/evalite/rag/precision", Count: 1}
		require.NoError(t, pg.Create(ctx, &row))

		var fetched viewCounter
		require.NoError(t, pg.First(ctx, &fetched, "path = ?", "/evalite/rag/precision"))
		assert.Equal(t, int64(1), fetched.Count)

		fetched.Count = 5
		require.NoError(t, pg.Save(ctx, &fetched))

		var rows []viewCounter
		require.NoError(t, pg.Find(ctx, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, int64(5), rows[0].Count)

		var count int64
		require.NoError(t, pg.Count(ctx, &viewCounter{}, &count, "count > ?", 0))
		assert.Equal(t, int64(1), count)

		require.NoError(t, pg.Delete(ctx, &viewCounter{}, "path = ?", "/evalite/rag/precision"))
		require.NoError(t, pg.Count(ctx, &viewCounter{}, &count, "1 = 1"))
		assert.Equal(t, int64(0), count)
	})

	t.Run("UpsertAccumulates", func(t *testing.T) {
		ctx := context.Background()
		upsert := `
			INSERT INTO view_counters (path, count, updated_at)
			VALUES (?, ?, NOW())
			ON CONFLICT (path) DO UPDATE
			SET count = view_counters.count + EXCLUDED.count, updated_at = NOW()`

		require.NoError(t, pg.Exec(ctx, upsert, "/ragas/faithfulness", int64(3)))
		require.NoError(t, pg.Exec(ctx, upsert, "/ragas/faithfulness", int64(4)))

		var row viewCounter
		require.NoError(t, pg.First(ctx, &row, "path = ?", "/ragas/faithfulness"))
		assert.Equal(t, int64(7), row.Count)
	})

	t.Run("TransactionRollsBackOnError", func(t *testing.T) {
		ctx := context.Background()

		sentinel := errors.New("abort")
		err := pg.Transaction(ctx, func(tx *gorm.DB) error {
			if err := tx.Create(&viewCounter{Path: "/promptfoo/tx", Count: 1}).Error; err != nil {
				return err
			}
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		var row viewCounter
		err = pg.First(ctx, &row, "path = ?", "/promptfoo/tx")
		assert.ErrorIs(t, TranslateError(err), ErrRecordNotFound, "rolled-back row must not exist")

		require.NoError(t, pg.Transaction(ctx, func(tx *gorm.DB) error {
			return tx.Create(&viewCounter{Path: "/promptfoo/tx", Count: 2}).Error
		}))
		require.NoError(t, pg.First(ctx, &row, "path = ?", "/promptfoo/tx"))
		assert.Equal(t, int64(2), row.Count)
	})

	t.Run("ErrorTranslation", func(t *testing.T) {
		ctx := context.Background()

		var row viewCounter
		err := pg.First(ctx, &row, "path = ?", "/never/seen")
		assert.ErrorIs(t, TranslateError(err), ErrRecordNotFound)
	})

	require.NoError(t, app.Stop(ctx))
}

// TestPostgresConnectionFailureRecovery tests connection failure and recovery.
func TestPostgresConnectionFailureRecovery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	mockLogger := newIntegrationLogger(t)

	pg := NewPostgres(pgContainer.Config, mockLogger)
	require.NotNil(t, pg)
	if pg.client == nil {
		t.Skip("Skipping test as database connection failed")
	}

	var result int
	err = pg.DB().Raw("SELECT 1").Scan(&result).Error
	assert.NoError(t, err)

	// Simulate a connection error by sending a signal to the retry channel.
	pg.retryChanSignal <- fmt.Errorf("test connection error")
	time.Sleep(100 * time.Millisecond)

	err = pg.DB().Raw("SELECT 1").Scan(&result).Error
	assert.NoError(t, err)
}

func TestErrorTranslationTable(t *testing.T) {
	assert.Nil(t, TranslateError(nil))
	assert.Equal(t, ErrRecordNotFound, TranslateError(gorm.ErrRecordNotFound))
	assert.Equal(t, ErrDuplicateKey, TranslateError(gorm.ErrDuplicatedKey))
	assert.Equal(t, ErrForeignKey, TranslateError(gorm.ErrForeignKeyViolated))

	customErr := fmt.Errorf("custom error")
	assert.Equal(t, customErr, TranslateError(customErr))
}

// waitForPostgresReady attempts to connect to PostgreSQL until it's ready or times out
func waitForPostgresReady(host, port, user, password, dbname string, timeout time.Duration) error {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	startTime := time.Now()
	for {
		if time.Since(startTime) > timeout {
			return fmt.Errorf("timed out waiting for PostgreSQL to be ready after %s", timeout)
		}

		db, err := sql.Open("postgres", connStr)
		if err != nil {
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if err := db.Ping(); err == nil {
			return db.Close()
		}

		_ = db.Close()
		time.Sleep(500 * time.Millisecond)
	}
}
