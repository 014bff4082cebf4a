// Package state shares the polled session summary between the status poller
// and the viewer.
//
// The poller calls Store.Update after every FetchStatus; the viewer reads
// Store.Snapshot on each refresh tick. A failed poll keeps the previous status
// and increments ConsecutiveFailures; two or more in a row mark the snapshot
// offline. Snapshots are copies and may be used without holding the lock.
package state
