// Package types defines the document store contract, the domain entity
// types, the backup envelope, and the standard errors for the Halcyon
// persistence core. It has no dependencies on the storage backends; the
// backends under internal/ implement the interfaces declared here.
package types
