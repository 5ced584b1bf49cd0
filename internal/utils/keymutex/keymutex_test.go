package keymutex_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/herdops/internal/utils/keymutex"
)

func TestKeyMutexSerializesSameKey(t *testing.T) {
	km := keymutex.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("plan-1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, km.Len())
}

func TestKeyMutexIndependentKeys(t *testing.T) {
	km := keymutex.New()

	unlock1 := km.Lock("plan-1")
	defer unlock1()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock("plan-2")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key should not block")
	}
}

func TestKeyMutexUnlockIsIdempotent(t *testing.T) {
	km := keymutex.New()

	unlock := km.Lock("plan-1")
	assert.Equal(t, 1, km.Len())
	unlock()
	unlock()
	assert.Equal(t, 0, km.Len())

	// Still usable after a double unlock.
	unlock = km.Lock("plan-1")
	unlock()
}
