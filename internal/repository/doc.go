// Package repository defines the data access interfaces for the universe
// server.
//
// This package provides the repository abstraction layer for persisting
// and retrieving domain entities. The actual implementation is in the
// sqlite subpackage.
//
// # Repository Interface
//
// The Repository interface defines all data access methods for regions,
// bridges, and discovery triggers.
//
// # SQLite Implementation
//
// The sqlite implementation provides a complete repository using SQLite
// with WAL mode for concurrency. It handles:
//
// - Upserts for all entity types
// - JSON serialization of evolution and health state
// - Transactional imports for seeding
//
// # Schema Migration
//
// The sqlite repository automatically creates its schema on startup,
// preserving existing data across restarts.
package repository
