package config

import "sync/atomic"

// Settings holds the live Dashboard section. Readers always see a complete
// value; Set replaces it atomically on reload.
type Settings struct {
	p atomic.Pointer[Dashboard]
}

// NewSettings returns Settings holding d.
func NewSettings(d Dashboard) *Settings {
	s := &Settings{}
	s.Set(d)
	return s
}

// Get returns the current dashboard settings.
func (s *Settings) Get() Dashboard {
	return *s.p.Load()
}

// Set replaces the current dashboard settings.
func (s *Settings) Set(d Dashboard) {
	s.p.Store(&d)
}
