// Package ctx holds the key type for values bizadmin stores in a context.Context.
package ctx

// CTXKey is the type of all keys bizadmin puts into a context,
// so they never collide with keys of other packages.
type CTXKey string
