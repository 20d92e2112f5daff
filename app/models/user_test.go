package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestHashAPIKey(t *testing.T) {
	a := HashAPIKey("key-one")
	b := HashAPIKey("key-one")
	c := HashAPIKey("key-two")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestUserValidate(t *testing.T) {
	user := &User{
		Name:   "Ada Obi",
		Email:  "ada@example.com",
		Role:   ROLE_PARENT,
		Status: STATUS_ACTIVE,
	}
	require.NoError(t, user.Validate())

	user.Email = "not-an-email"
	assert.Error(t, user.Validate())

	user.Email = "ada@example.com"
	user.Role = "superuser"
	assert.Error(t, user.Validate())
}

func TestStudentValidate(t *testing.T) {
	student := &Student{
		Name:               "Chidi Obi",
		RegistrationNumber: "REG001",
	}
	require.NoError(t, student.Validate())

	student.RegistrationNumber = ""
	assert.Error(t, student.Validate())
}
