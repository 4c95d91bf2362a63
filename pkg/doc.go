// Package pkg provides the core libraries for the pkgfed client.
//
// # Overview
//
// pkgfed gathers transitive dependency metadata for a package release
// across federated package feeds. The pkg directory is organized into
// four main areas:
//
//  1. [gather] - The fixed-point gather driver, candidate set, and queried ledger
//  2. [feed], [feeds] - The data model, wire schema, and feed adapters
//  3. [version], [framework] - Version/range semantics and target profiles
//  4. [cache], [config], [errors], [httputil], [observability], [render] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through pkgfed:
//
//	feeds.toml catalog
//	         ↓
//	feeds/registry (capability query per source)
//	         ↓
//	gather.Gather (fixed point across feeds)
//	         ↓
//	[]feed.SourcedInfo → downstream resolver / render
package pkg
