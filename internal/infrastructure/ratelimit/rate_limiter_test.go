package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsBurstThenDenies(t *testing.T) {
	rl := NewRateLimiter(3)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("u1", ActionSendMessage)
		assert.True(t, ok, "message %d should pass", i)
	}

	ok, wait := rl.Allow("u1", ActionSendMessage)
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	ok, _ = rl.Allow("u2", ActionSendMessage)
	assert.True(t, ok, "other users have their own bucket")
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(60)
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }

	for i := 0; i < 60; i++ {
		rl.Allow("u1", ActionSendMessage)
	}
	ok, _ := rl.Allow("u1", ActionSendMessage)
	assert.False(t, ok)

	current = current.Add(2 * time.Second)
	ok, _ = rl.Allow("u1", ActionSendMessage)
	assert.True(t, ok)
}

func TestRateLimiter_DisabledWhenZero(t *testing.T) {
	rl := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		ok, _ := rl.Allow("u1", ActionSendMessage)
		assert.True(t, ok)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(5)
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }

	rl.Allow("u1", ActionSendMessage)
	current = current.Add(2 * time.Hour)
	rl.Allow("u2", ActionSendMessage)

	rl.Cleanup(time.Hour)
	assert.Len(t, rl.buckets, 1)
	assert.Contains(t, rl.buckets, "u2:"+ActionSendMessage)
}
