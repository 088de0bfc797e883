// Package modgraph models an already-resolved module graph: the source
// modules reachable from a root specifier, the import edges between them,
// and the synthetic package-reference modules that stand in for npm packages.
//
// # Modules
//
// [Module] is a closed sum type with one implementation per kind:
//
//   - [EsmModule]: a JavaScript/TypeScript source module with a size,
//     optional cache paths, and ordered [Dependency] edges
//   - [JSONModule]: a JSON source module with a size
//   - [NpmModule]: a package reference pinned to an exact version
//   - [NodeModule]: a built-in "node:" module
//   - [ExternalModule]: an opaque module the graph did not load
//
// Switch on the concrete type (or on [Module.Kind]) to dispatch; the
// unexported marker method keeps the set closed.
//
// # Edges
//
// Each [Dependency] has a code channel and a type channel. A channel's
// [Resolution] is either absent, a resolved specifier, or a resolution error
// message. Modules that failed to load are kept as [ModuleError] values and
// returned by [Graph.TryGet].
//
// # Serialization
//
// [ReadGraph] and [WriteGraph] use the JSON document described on
// [ReadGraph]. The graph is read-only once loaded and safe for concurrent
// reads.
package modgraph
