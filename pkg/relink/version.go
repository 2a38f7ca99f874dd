// Package relink holds build information for the relink module.
package relink

// Version is the relink release version.
const Version = "0.1.0"
