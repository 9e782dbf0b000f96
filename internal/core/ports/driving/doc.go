// Package driving defines interfaces that external actors (CLI, MCP server)
// use to interact with core services. These are the "driving" ports in
// hexagonal architecture terminology - they drive the application.
//
// Every operation takes a user id that the surrounding application has
// already authenticated. The core trusts that value and performs only
// authorization-by-ownership checks.
//
// Implementations of these interfaces live in internal/core/services.
package driving
