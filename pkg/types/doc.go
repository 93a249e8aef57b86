// Package types defines the Activity record, the Client interface that
// fronts the remote activities API, client configuration, and the standard
// errors shared by the activities client packages.
package types
