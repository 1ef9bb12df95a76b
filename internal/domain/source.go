package domain

import (
	"net/url"
	"strings"
)

type ProviderName string

func (p ProviderName) String() string { return string(p) }

// Source - каноничный результат поиска, единая форма для всех провайдеров
type Source struct {
	URL     string
	Title   string
	Content string
	Quality float64
	Summary string
}

// только http/https с валидным хостом
func (s *Source) Validate() error {
	if s.URL == "" {
		return ErrInvalidURL
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return ErrInvalidURL
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}

	if u.Host == "" {
		return ErrInvalidURL
	}

	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}

	if s.Quality < 0 || s.Quality > 1 {
		return ErrInvalidQuality
	}

	return nil
}

func (s *Source) Domain() string {
	if s.URL == "" {
		return ""
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}

	host := u.Host
	if len(host) > 4 && host[:4] == "www." {
		host = host[4:]
	}

	return host
}
