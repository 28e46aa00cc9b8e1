package config

import (
	"testing"
	"time"

	"tabml/domain/training"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "UPLOAD_FOLDER", "SCALER_FIT_SCOPE", "LOGISTIC_TARGET_POLICY", "MAX_ITERATIONS", "DATABASE_URL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, int64(32<<20), cfg.Storage.MaxUploadSize)
	assert.Equal(t, training.ScalerFitFull, cfg.Training.ScalerFitScope)
	assert.Equal(t, training.LogisticPermissive, cfg.Training.LogisticTargetPolicy)
	assert.Equal(t, 1000, cfg.Training.MaxIterations)
	assert.Equal(t, int64(42), cfg.Training.PartitionSeed)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("UPLOAD_FOLDER", "/data/uploads")
	t.Setenv("SCALER_FIT_SCOPE", "train")
	t.Setenv("LOGISTIC_TARGET_POLICY", "strict")
	t.Setenv("MAX_ITERATIONS", "250")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("DATABASE_URL", "postgres://localhost/tabml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/data/uploads", cfg.Storage.UploadDir)
	assert.Equal(t, training.ScalerFitTrain, cfg.Training.ScalerFitScope)
	assert.Equal(t, training.LogisticStrict, cfg.Training.LogisticTargetPolicy)
	assert.Equal(t, 250, cfg.Training.MaxIterations)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoad_RejectsUnknownPolicies(t *testing.T) {
	t.Setenv("SCALER_FIT_SCOPE", "eval")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SCALER_FIT_SCOPE", "")
	t.Setenv("LOGISTIC_TARGET_POLICY", "lenient")
	_, err = Load()
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
