// Package service implements the authoritative business logic of the
// universe server.
//
// This package provides service layers that coordinate between the HTTP
// handlers and the repository layer, implementing business rules,
// validation, and event publishing.
//
// # Services
//
// UniverseService serves the ground-truth graph and handles seeding.
//
// DiscoveryService evaluates discovery triggers against recorded session
// activity, computes per-region progress, and decides when a region becomes
// revealed. Reveal decisions are server-side only; clients learn about them
// through progress polls and push events.
//
// EvolutionService applies visual evolution deltas to regions and bridges
// in response to activity, throttled per region.
//
// # Event System
//
// All services publish typed push events via EventBus for real-time updates
// to connected WebSocket clients.
package service
