// Package pkg provides the core libraries of depinfo.
//
// # Overview
//
// depinfo reports on a program's module graph: which modules the root
// imports, which npm packages those imports resolved to, and how large
// everything is. It reads two already-materialized documents, the module
// graph and the npm resolution snapshot, and never fetches or resolves
// anything itself.
//
// # Architecture
//
// The data flow through depinfo:
//
//	graph.json + snapshot.json
//	         ↓
//	    [modgraph] + [npm] (decode into the graph and snapshot models)
//	         ↓
//	    [info] package index (resolve npm modules, collect package closure)
//	         ↓
//	    [info] text tree / augmented JSON, [render/nodelink] DOT / SVG
//
// # Quick Start
//
//	g, _ := modgraph.ReadGraphFile("graph.json")
//	snap, _ := npm.ReadSnapshotFile("snapshot.json")
//
//	sizer := sizes.Cached(sizes.Dir("/srv/npm"), cache.NewNullCache(), 0)
//	err := info.Write(ctx, os.Stdout, g, snap, info.Options{Sizer: sizer})
//
// # Main Packages
//
// [npm] - Package names, versions, requirements, ids with peer dependency
// qualifiers, and the resolution snapshot.
//
// [modgraph] - The module graph: module variants, dependencies, resolutions,
// redirects and per-module load errors, with its JSON form.
//
// [info] - The package index, the text report and the JSON augmentation.
//
// [tree] - Box-drawing tree rendering used by the text report.
//
// [render/nodelink] - Graphviz DOT and SVG export.
//
// [sizes] - Package size oracles (on-disk, static, cached).
//
// [cache] - File, Redis and null cache backends.
//
// [observability] - Report, cache and HTTP hooks with no-op defaults.
//
// [errors] - Code-typed errors shared by the loaders and the CLI.
//
// # Testing
//
//	go test ./...                       # All tests
//	go test ./pkg/info/...              # Specific package
//
// [npm]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/npm
// [modgraph]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/modgraph
// [info]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/info
// [tree]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/tree
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/render/nodelink
// [sizes]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/sizes
// [cache]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/depinfo/pkg/errors
package pkg
