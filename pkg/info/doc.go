// Package info reports on a resolved module graph and its npm resolution
// snapshot.
//
// Two views are produced from the same inputs:
//
//   - [Write] prints a summary header and a deduplicated dependency tree.
//     Every module and package is expanded at most once per report; later
//     appearances are marked with "*". Modules that failed to load become
//     error leaves instead of aborting the report.
//   - [WriteJSON] serializes the graph, then [AddPackagesToJSON] folds the
//     synthetic npm modules into their importers and appends an
//     "npmPackages" registry.
//
// Both views share [PackageIndex], the closure of packages reachable from
// the graph's npm modules together with their sizes. Sizes come from a
// [PackageSizer] and are best effort: a failed lookup prints "(unknown)".
//
// Neither the graph nor the snapshot is modified, and no state is kept
// between calls, so concurrent reports over the same inputs are safe.
package info
