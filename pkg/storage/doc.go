// Package storage holds what the storage backends share: the sentinel
// errors callers match on.
//
// Backends (memory, postgres, sqlite) implement transport.ProductStore
// and identity.Store. Those interfaces live with their consumers; this
// package defines no interface of its own.
package storage
