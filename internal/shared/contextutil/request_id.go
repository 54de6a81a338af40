package contextutil

// RequestIDKey is the raw key middleware uses on the gin context.
func RequestIDKey() string {
	return string(requestIDKey)
}
