package content

// serverTimestamp is the opaque placeholder a client puts into a payload in
// place of a concrete time. Stores resolve it to their own clock when the
// write commits, which keeps client clock skew out of the audit trail.
type serverTimestamp struct{}

// ServerTimestamp returns the placeholder token. The value is opaque: the
// only supported operations are embedding it in a payload handed to a Store
// and testing it with IsServerTimestamp.
func ServerTimestamp() any {
	return serverTimestamp{}
}

// IsServerTimestamp reports whether v is the placeholder token.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}
