package sync

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_LockUnlock(t *testing.T) {
	m := NewShardedMutex(8)

	m.Lock("key1")
	m.Unlock("key1")

	// Empty key maps to shard 0
	m.Lock("")
	m.Unlock("")
}

func TestShardedMutex_DefaultShards(t *testing.T) {
	m := NewShardedMutex(0)
	assert.Len(t, m.shards, DefaultShards)
}

func TestShardedMutex_SameKeySerializes(t *testing.T) {
	m := NewShardedMutex(16)
	counter := 0
	var wg sync.WaitGroup

	for range 200 {
		wg.Go(func() {
			m.Lock("certificate-1")
			defer m.Unlock("certificate-1")
			counter++
		})
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestShardedMutex_StableShardSelection(t *testing.T) {
	m := NewShardedMutex(32)
	for i := range 50 {
		key := "key-" + strconv.Itoa(i)
		first := m.shardFor(key)
		assert.Equal(t, first, m.shardFor(key))
		assert.Less(t, first, 32)
	}
}

func TestShardedMutex_WithLockPropagatesError(t *testing.T) {
	m := NewShardedMutex(4)
	sentinel := errors.New("boom")

	err := m.WithLock("k", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	// Lock must be released after fn returns
	m.Lock("k")
	m.Unlock("k")
}
