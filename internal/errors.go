package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingInput is returned when a request carries neither a URL nor an upload
var ErrMissingInput = errors.New("no audio source provided")

// ValidationError reports a request the pipeline refuses to start (HTTP 400)
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AcquisitionError reports a failure to produce the audio artifact.
// ExitCode is the downloader's exit status, or -1 when the process never ran.
type AcquisitionError struct {
	ExitCode int
	Err      error
}

func (e *AcquisitionError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("yt-dlp exited with code %d: %v", e.ExitCode, e.Err)
	}
	return fmt.Sprintf("acquiring audio: %v", e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// TranscriptionError wraps a failed speech translation call
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return fmt.Sprintf("transcribing audio: %v", e.Err) }

func (e *TranscriptionError) Unwrap() error { return e.Err }

// AnalysisError wraps a failed chat completion call
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return fmt.Sprintf("analyzing transcript: %v", e.Err) }

func (e *AnalysisError) Unwrap() error { return e.Err }

// StatusCode maps a pipeline error to the HTTP status returned to the caller
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
