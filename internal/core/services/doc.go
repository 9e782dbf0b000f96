// Package services implements the driving ports: the knowledge store that
// owns the document ingestion lifecycle and the query engine that answers
// per-user similarity searches.
//
// Services depend only on domain types and driven ports. Adapters are
// injected at construction time.
package services
