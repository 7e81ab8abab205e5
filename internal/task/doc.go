// Package task runs short background jobs on a fixed pool of workers fed by
// a bounded in-memory queue.
//
// Its main user is AsyncNotifier, which moves notification delivery off the
// request path: a handler enqueues the event and returns, and a worker
// publishes it later. Queued jobs are drained on Stop. Jobs are not
// persisted, so anything still queued when the process is killed is lost.
package task
