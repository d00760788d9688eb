// Package gntaxdb keeps the taxonomy tree of a genome-annotation catalog
// consistent with the lineages stored on its organisms, assemblies and
// annotations.
package gntaxdb

var (
	// Version of the application, set during build.
	Version = "v0.1.0"
	// Build timestamp, set during build.
	Build = "n/a"
)
