// Package errkind defines the taxonomy of per-request failure kinds shared
// across the engine. It has no dependencies so every other package can
// import it without risking an import cycle.
package errkind

// Kind classifies why a request did not count as a clean success.
type Kind string

const (
	// None means the request succeeded with no assertion failure.
	None Kind = ""

	// NetworkError covers DNS failure, connection refused, TLS handshake
	// failure, and read/write failure mid-request.
	NetworkError Kind = "NetworkError"

	// Timeout means the per-request deadline expired.
	Timeout Kind = "Timeout"

	// Cancelled means the run was cancelled while the request was in flight.
	Cancelled Kind = "Cancelled"

	// FileError means a body-file or form-file could not be opened or read.
	FileError Kind = "FileError"

	// AssertStatus means the response status code did not match the
	// expected value.
	AssertStatus Kind = "AssertStatus"

	// AssertBody means the response body did not contain the expected
	// substring.
	AssertBody Kind = "AssertBody"

	// AssertMaxRT means the response time exceeded the configured maximum.
	AssertMaxRT Kind = "AssertMaxRT"

	// DecodeError means the body could not be decoded for a substring
	// assertion; treated as an assertion failure.
	DecodeError Kind = "DecodeError"
)
