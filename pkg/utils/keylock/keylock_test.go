package keylock_test

import (
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/verdicttrace/verdicttrace/pkg/utils/keylock"
)

func TestKeyLockSerializesPerKey(t *testing.T) {
	locks := keylock.New()

	const workers = 16
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("sku-1\x00overheating")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	gt.Equal(t, workers, counter)
}

func TestKeyLockIndependentKeys(t *testing.T) {
	locks := keylock.New()

	unlockA := locks.Lock("a")
	// A held lock on one key must not block another key
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()

	// Same key is reusable after unlock
	unlock := locks.Lock("a")
	unlock()
}
