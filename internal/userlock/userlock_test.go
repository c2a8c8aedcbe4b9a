package userlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	var l Locks
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(42)
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, l.Len(), "entries must be released")
}

func TestLockDifferentKeysIndependent(t *testing.T) {
	var l Locks
	unlockA := l.Lock(1)
	done := make(chan struct{})
	go func() {
		unlockB := l.Lock(2)
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
	assert.Equal(t, 0, l.Len())
}
