package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockEntityMutualExclusion(t *testing.T) {
	const workers = 10
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := LockEntity("cart", 42)
			defer unlock()
			// Kritik bölge: kilit düzgün çalışıyorsa yarış yok
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestLockEntityReleasesMapEntry(t *testing.T) {
	unlock := LockEntity("item", 7)

	lockMu.Lock()
	_, held := entityLocks["item/7"]
	lockMu.Unlock()
	require.True(t, held)

	unlock()

	// Son tutan bıraktı, girdi map'ten düşmeli
	lockMu.Lock()
	_, held = entityLocks["item/7"]
	lockMu.Unlock()
	assert.False(t, held)
}

func TestLockEntityKeepsEntryWhileContended(t *testing.T) {
	unlockA := LockEntity("purchase", 3)

	acquired := make(chan func())
	go func() {
		acquired <- LockEntity("purchase", 3)
	}()

	// İkinci istek bekliyor; ilk bırakınca girdi hâlâ canlı olmalı
	unlockA()
	unlockB := <-acquired

	lockMu.Lock()
	_, held := entityLocks["purchase/3"]
	lockMu.Unlock()
	assert.True(t, held)

	unlockB()

	lockMu.Lock()
	_, held = entityLocks["purchase/3"]
	lockMu.Unlock()
	assert.False(t, held)
}
