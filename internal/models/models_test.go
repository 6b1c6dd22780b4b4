package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecision(t *testing.T) {
	s, ok := ParseDecision("confirmed")
	assert.True(t, ok)
	assert.Equal(t, StatusConfirmed, s)

	s, ok = ParseDecision("rejected")
	assert.True(t, ok)
	assert.Equal(t, StatusRejected, s)

	for _, bad := range []string{"pending", "CONFIRMED", "", "done"} {
		_, ok := ParseDecision(bad)
		assert.False(t, ok, bad)
	}
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCustomer.Valid())
	assert.False(t, Role("owner").Valid())

	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleCustomer}).IsAdmin())
}

func TestMaskedNumber(t *testing.T) {
	assert.Equal(t, "************4242", Card{CardNumber: "4242 4242 4242 4242"}.MaskedNumber())
	assert.Equal(t, "123", Card{CardNumber: "123"}.MaskedNumber())
}
