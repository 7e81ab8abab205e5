// Package service contains the application use cases of Palette: account
// handling around social login and the diary lifecycle shared between two
// members.
//
// Services depend on store interfaces and a store.Transactor, never on a
// concrete database. Every mutating operation runs in one transaction, and
// operations that change a diary's membership or histories lock the diary
// row first. The lifecycle rules themselves are pure functions in
// internal/domain.
//
// Expected conditions are returned as sentinel errors from this package,
// internal/domain and internal/store, wrapped in a ServiceError. The API
// layer maps them to status codes with errors.Is.
package service
