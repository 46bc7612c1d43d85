// Package session provides session management for knight-paths.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session persistence to JSON files or SQLite
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns its own board engine together with metadata like
// creation time and last access time.
//
// SessionPersistence abstracts the storage backend. FilePersistence writes
// one JSON file per session under an advisory directory lock;
// SQLitePersistence upserts rows into a single sessions table.
//
// Session Identifiers:
//
// Generated session IDs are 4 hex characters from crypto/rand. Lookups are
// case-insensitive. Caller supplied IDs may use letters, digits, '-' and '_'.
//
// Restoring:
//
// A session saved while a search was in flight comes back waiting for its
// destination, because the search itself is not persisted.
//
// Usage:
//
//	persistence, err := session.NewSQLitePersistence("sessions/sessions.db", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", boardConfig)
package session
