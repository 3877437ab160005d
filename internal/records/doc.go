// Package records provides the entity types of schoolbook and typed
// repositories over the key-value store.
//
// Each collection is read and written as a whole: GetAll returns the stored
// sequence in insertion order and SaveAll replaces it. Callers express
// higher-level changes as Update, a read-modify-write that holds the mutex of
// that collection's key for its whole duration, so concurrent callers in one
// process never lose each other's writes.
//
// Cross-entity references (studentId, teacherId, senderId) are plain ids
// resolved by lookup. Nothing here enforces or cascades them.
//
// An absent document reads as an empty collection or a nil singleton. A
// document that cannot be decoded is logged and read the same way.
package records
