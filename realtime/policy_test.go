package realtime

import (
	"testing"
	"time"

	"knead/config"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicyFollowsConfiguredPollInterval(t *testing.T) {
	orig := config.AppConfig.PollIntervalSeconds
	defer func() { config.AppConfig.PollIntervalSeconds = orig }()

	config.AppConfig.PollIntervalSeconds = 7
	assert.Equal(t, 7*time.Second, DefaultPolicy().PollInterval)

	// Unset or nonsense configuration falls back to the stock interval.
	config.AppConfig.PollIntervalSeconds = 0
	assert.Equal(t, 30*time.Second, DefaultPolicy().PollInterval)

	assert.Equal(t, time.Duration(0), PushOnly().PollInterval)
}
