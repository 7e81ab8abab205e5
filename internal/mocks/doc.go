// Package mocks provides test doubles for the store, auth and notification
// interfaces. Store and service mocks are built on testify/mock; the
// JWT service and the transactor use function fields with defaults.
package mocks
