package persist

import "fmt"

// SinkError wraps a backend failure with the destination it targeted.
type SinkError struct {
	Kind Kind
	Dest string
	Err  error
}

func (e *SinkError) Error() string {
	switch e.Kind {
	case KindAmazonS3:
		return fmt.Sprintf("failed to put to s3: %s: %v", e.Dest, e.Err)
	default:
		return fmt.Sprintf("failed to write local file: %s: %v", e.Dest, e.Err)
	}
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
