package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, User.Valid())
	assert.True(t, Model.Valid())
	assert.False(t, Role("system").Valid())
	assert.False(t, Role("").Valid())
}

func TestString(t *testing.T) {
	assert.Equal(t, "user", User.String())
	assert.Equal(t, "model", Model.String())
}
