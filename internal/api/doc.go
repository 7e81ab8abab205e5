// Package api exposes the diary, history and account operations over HTTP.
// Handlers decode and validate JSON requests, call the services and map
// service errors to status codes and error codes.
package api
