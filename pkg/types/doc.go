// Package types defines the reference, snapshot, and mapping types shared by
// the relink engine, the snapshot store, and the host-graph providers, along
// with the standard error values they return.
//
// Host graphs expose their path-carrying elements through Provider. The core
// never owns those elements; it works on transient PathRef views resolved once
// at the boundary.
package types
