// Package core defines the shared currency of the govmesh framework: the
// message envelope exchanged between agents, the agent and endpoint
// contracts, the structured policy rule model, and the stable error
// taxonomy used across the router, runtime and orchestrator.
//
// Everything here is deliberately free of business logic. The envelope is
// immutable once routed, rule sets are immutable once registered, and the
// error kinds are the only error classification the outer layers rely on.
package core
