package natspub

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/semhome/errors"
)

func TestNewRequiresURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestNewUnreachableServerIsTransient(t *testing.T) {
	_, err := New(Config{URL: "nats://127.0.0.1:1", MaxReconnects: 0})
	assert.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}
