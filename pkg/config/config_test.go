package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Set test environment variables
	os.Setenv("SERVER_PORT", "8080")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_PORT", "5432")
	os.Setenv("DB_USER", "testuser")
	os.Setenv("DB_PASSWORD", "testpass")
	os.Setenv("DB_NAME", "testdb")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("RABBITMQ_HOST", "localhost")
	os.Setenv("JWT_SECRET", "test-secret")

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Assertions
	assert.NotNil(t, cfg)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "testuser", cfg.DBUser)
	assert.Equal(t, "testpass", cfg.DBPassword)
	assert.Equal(t, "testdb", cfg.DBName)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.Equal(t, "localhost", cfg.RabbitMQHost)
	assert.Equal(t, "test-secret", cfg.JWTSecret)

	// Cleanup
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("DB_HOST")
	os.Unsetenv("DB_PORT")
	os.Unsetenv("DB_USER")
	os.Unsetenv("DB_PASSWORD")
	os.Unsetenv("DB_NAME")
	os.Unsetenv("REDIS_HOST")
	os.Unsetenv("REDIS_PORT")
	os.Unsetenv("RABBITMQ_HOST")
	os.Unsetenv("JWT_SECRET")
}

func TestLoadConfig_Defaults(t *testing.T) {
	os.Unsetenv("QUEUE_MAX_ATTEMPTS")
	os.Unsetenv("IMAGE_DELAY")
	os.Unsetenv("CREDENTIALS_SECRET")
	os.Setenv("JWT_SECRET", "only-secret")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 3, cfg.QueueMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.ImageDelay)
	assert.Equal(t, 120*time.Second, cfg.ProviderTimeout)

	// Credentials secret falls back to JWT secret
	assert.Equal(t, "only-secret", cfg.CredentialsSecret)

	os.Unsetenv("JWT_SECRET")
}

func TestLoadConfig_DurationOverride(t *testing.T) {
	os.Setenv("IMAGE_DELAY", "500ms")
	os.Setenv("QUEUE_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.ImageDelay)
	assert.Equal(t, 5, cfg.QueueMaxAttempts)

	os.Unsetenv("IMAGE_DELAY")
	os.Unsetenv("QUEUE_MAX_ATTEMPTS")
}
