package database

import (
	"fmt"
	"sync"
)

// Entity bazlı kilit: aynı talep/sepet/ürün üzerinde eşzamanlı iki
// handler'ın (ör: çifte confirm) iç içe geçmesini engeller. Tek process
// çalıştığımız için process içi mutex yeterli; transaction ile birlikte
// kullanılır. Girdiler referans sayılır, son tutan bıraktığında map'ten
// düşer; kilit tablosu entity sayısıyla büyümez.
var (
	lockMu      sync.Mutex
	entityLocks = map[string]*entityLock{}
)

type entityLock struct {
	mu   sync.Mutex
	refs int
}

// LockEntity: verilen entity'yi kilitler, unlock fonksiyonu döner.
//
//	unlock := database.LockEntity("cart", cartID)
//	defer unlock()
func LockEntity(kind string, id uint) func() {
	key := fmt.Sprintf("%s/%d", kind, id)

	lockMu.Lock()
	el, ok := entityLocks[key]
	if !ok {
		el = &entityLock{}
		entityLocks[key] = el
	}
	el.refs++
	lockMu.Unlock()

	el.mu.Lock()
	return func() {
		el.mu.Unlock()

		lockMu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(entityLocks, key)
		}
		lockMu.Unlock()
	}
}
