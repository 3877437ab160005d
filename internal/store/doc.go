// Package store provides the key-value persistence adapter for schoolbook.
//
// # Architecture
//
// Every collection (teachers, students, attendance, ...) and every singleton
// (school info, current session) is stored as one whole JSON document under a
// fixed key. The closed key set is declared in store.go; any other key is
// rejected with ErrUnknownKey.
//
// Backends implementing Store:
//
//   - MemoryStore: in-process map, used by tests and the "memory" backend
//   - SQLiteStore: a single kv table, modernc.org/sqlite ("sqlite") or
//     github.com/mattn/go-sqlite3 ("sqlite3")
//   - RedisStore: one Redis string per key under a prefix
//   - PostgresStore: a single kv table accessed through pgxpool
//
// # Atomicity
//
// Put and Delete touch a single key. PutMany is atomic on every backend
// (lock, transaction or MULTI/EXEC), which is what school setup relies on to
// write the school info and the headmaster together.
//
// # SQLite Configuration
//
//	PRAGMA journal_mode=WAL;
//
// Use NewMemoryStore() for unit tests and NewSQLiteStore(path) with a
// t.TempDir() path for integration tests.
//
// # Error Handling
//
//   - ErrAbsent: nothing stored under the key
//   - ErrUnknownKey: key outside the closed set
//   - ErrInvalidJSON: value is not a JSON document
package store
