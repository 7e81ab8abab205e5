// Package domain contains the core business entities, value objects, and
// domain logic of the application. It holds the diary lifecycle rules that
// decide who may join a diary and when a diary moves between its states,
// independent of any specific infrastructure or delivery mechanism.
package domain
