// Package handler implements the HTTP API of the universe server.
//
// Handlers are thin: they decode requests, call into the service layer, and
// encode responses. All business rules, including reveal decisions, live in
// the services.
//
// # Endpoints
//
// GET  /api/universe                                  complete graph
// GET  /api/universe/discovery/progress/{session}     per-region progress
// POST /api/universe/discovery/record                 record session activity
// POST /api/universe/discovery/reveal/{region}        force-reveal a region
// POST /api/universe/discovery/reveal-all             force-reveal everything
//
// Push events are served separately by the hub package on /ws.
package handler
