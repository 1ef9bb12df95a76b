package retry

import (
	"context"
	"time"
)

type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do выполняет work, при ошибке повторяет до MaxRetries дополнительных
// попыток с нарастающей задержкой (BaseDelay * номер попытки). После
// исчерпания бюджета возвращается последняя ошибка как есть.
func Do(ctx context.Context, cfg Config, work func() error) error {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.BaseDelay * time.Duration(attempt)):
			}
		}

		if lastErr = work(); lastErr == nil {
			return nil
		}
	}

	return lastErr
}
