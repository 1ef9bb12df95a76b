package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Key строит детерминированный ключ из (запрос, провайдер, лимит).
// Одинаковые логические запросы попадают в один ключ независимо от
// регистра и лишних пробелов.
func Key(query, provider string, limit int) string {
	data := fmt.Sprintf("%s|%s|%d", normalizeQuery(query), provider, limit)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("search:%s:%x", provider, hash[:8])
}

func normalizeQuery(q string) string {
	q = strings.ToLower(q)
	q = strings.TrimSpace(q)
	return strings.Join(strings.Fields(q), " ")
}
