// Package npm models the package side of a dependency report: package
// names and versions, version requirements, "npm:" specifier references,
// platform-qualified package ids, and the resolution snapshot that maps
// requirements to concrete packages.
//
// # Identities
//
// Three related identities appear throughout:
//
//   - [PackageReq]: a name plus a version requirement ("chalk@^5"), as written
//     in an import specifier before resolution.
//   - [PackageNv]: a name plus an exact version ("chalk@5.0.0").
//   - [PackageID]: a [PackageNv] qualified by the peer dependencies it was
//     resolved against. One nv may resolve to several ids.
//
// Package ids serialize as "name@version" followed by their peer ids, each
// introduced by (level+1) underscores:
//
//	a@1.0.0_b@2.0.0__c@3.0.0
//
// [PackageID.Compare] defines the total order used wherever packages are
// listed: name, then semantic version precedence, then peers.
//
// # Snapshot
//
// A [Snapshot] is read-only once loaded. It answers the three lookups a
// report needs: requirement to package ([Snapshot.ResolveFromRequirement]),
// nv to package ([Snapshot.ResolvePackageFromModule]) and id to package
// ([Snapshot.PackageFromID]). [Snapshot.AllPackages] enumerates every
// package regardless of platform.
package npm
