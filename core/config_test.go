package core

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_NotifyAddresses(t *testing.T) {
	conf := NewTestConfig()
	assert.Empty(t, conf.NotifyAddresses())

	conf.NotifyEmails = []string{"ops@test.test", "not an email", "Jane <jane@test.test>"}
	assert.Equal(t, []mail.Address{
		{Address: "ops@test.test"},
		{Name: "Jane", Address: "jane@test.test"},
	}, conf.NotifyAddresses())
}

func TestNewConfig_Env(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_STORAGE_BACKEND", "Redis")
	t.Setenv("TEST_SERVER_ADDRESS", ":9000")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.False(t, conf.Debug)
	assert.Equal(t, StorageRedis, conf.Storage.Backend)
	assert.Equal(t, ":9000", conf.Server.Address)
	assert.Equal(t, "pathways:", conf.Redis.Prefix)
}
