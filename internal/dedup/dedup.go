package dedup

import "golang.org/x/sync/singleflight"

// Group схлопывает конкурентные одинаковые запросы: на один ключ
// одновременно выполняется максимум одна work-функция, остальные
// вызывающие получают её результат (или её ошибку). Ключ освобождается
// до доставки результата, поэтому следующий вызов после завершения
// начинает новое выполнение - кеширование не наша забота.
type Group struct {
	sf singleflight.Group
}

func New() *Group {
	return &Group{}
}

// Execute возвращает shared=true если результат пришел из чужого
// выполнения, а не из собственного вызова work.
func (g *Group) Execute(key string, work func() (interface{}, error)) (interface{}, bool, error) {
	v, err, shared := g.sf.Do(key, work)
	return v, shared, err
}

// Forget сбрасывает in-flight ключ, следующий вызов начнет заново
func (g *Group) Forget(key string) {
	g.sf.Forget(key)
}
