// Package render groups the graph export formats of depinfo.
//
// The text tree and JSON reports live in pkg/info; this tree holds the
// graphical exports. Currently that is the [nodelink] subpackage, which
// produces Graphviz DOT and SVG.
package render
