// Package fallback decides whether camera capture is usable at all and,
// when it is not, signals that a manual file-input path should be used.
//
// It renders no interface of its own: it exposes a capability check and
// an error-classification pass-through for the surrounding application.
package fallback
