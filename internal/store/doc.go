// Package store defines the persistence interfaces for the application
// and the sentinel errors shared by their implementations. Concrete
// implementations live under internal/platform.
package store
