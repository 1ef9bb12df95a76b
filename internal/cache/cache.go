package cache

import "time"

// Entry - запись кеша с меткой времени. Stale - рекомендательный признак,
// вызывающая сторона сама решает доверять ли значению.
type Entry struct {
	Value    interface{}
	StoredAt time.Time
	TTL      time.Duration
}

func (e Entry) Stale(now time.Time) bool {
	return now.Sub(e.StoredAt) > e.TTL
}

type Cache interface {
	// Get трактует просроченные записи как промах
	Get(key string) (interface{}, bool)
	// GetEntry возвращает запись даже если она просрочена
	GetEntry(key string) (Entry, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
}
