// Package nodelink draws module graphs as Graphviz node-link diagrams.
//
// [ToDOT] emits DOT text: one box per module, one per resolved npm package,
// solid edges for code imports and dashed edges for type-only imports.
// [RenderSVG] lays the DOT out with the embedded Graphviz build, so no
// external "dot" binary is needed:
//
//	idx := info.BuildPackageIndex(ctx, g, snap, sizer)
//	dot := nodelink.ToDOT(g, idx, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package nodelink
