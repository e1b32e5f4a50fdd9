package repository

import "time"

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithMaxOpenConns caps the number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns sets the number of idle connections kept in the pool.
func WithMaxIdleConns(n int) Option {
	return func(s *SQLStore) {
		if n >= 0 {
			s.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime recycles connections older than d.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *SQLStore) {
		if d > 0 {
			s.connMaxLifetime = d
		}
	}
}

// WithAutoMigrate toggles creation of the todos table at open.
func WithAutoMigrate(enabled bool) Option {
	return func(s *SQLStore) {
		s.autoMigrate = enabled
	}
}
