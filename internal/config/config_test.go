package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUser(t *testing.T) {
	s := &SecurityConfig{BasicAuth: BasicAuthConfig{
		Enabled: true,
		Users: []BasicAuthUser{
			{Username: "admin", Password: "secret"},
			{Username: "editor", Password: "letmein"},
		},
	}}

	assert.True(t, s.ValidateUser("admin", "secret"))
	assert.True(t, s.ValidateUser("editor", "letmein"))

	assert.False(t, s.ValidateUser("admin", "letmein"))
	assert.False(t, s.ValidateUser("editor", "secret"))
	assert.False(t, s.ValidateUser("admin", "secre"))
	assert.False(t, s.ValidateUser("admin", "secret "))
	assert.False(t, s.ValidateUser("Admin", "secret"))
	assert.False(t, s.ValidateUser("", ""))
}

func TestValidateUser_NoUsers(t *testing.T) {
	s := &SecurityConfig{}
	assert.False(t, s.ValidateUser("", ""))
	assert.False(t, s.ValidateUser("admin", "secret"))
}

func TestGetInvalidValueMessage(t *testing.T) {
	assert.Equal(t, DefaultInvalidValueMessage, (&ValidationConfig{}).GetInvalidValueMessage())
	assert.Equal(t, "Nope.", (&ValidationConfig{InvalidValueMessage: "Nope."}).GetInvalidValueMessage())
}
