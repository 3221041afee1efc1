package domain

import "errors"

var (
	// ErrNoFieldsRequested is returned when a caller asks for an extraction
	// with an empty field list.
	ErrNoFieldsRequested = errors.New("no fields requested")

	// ErrDuplicateField is returned when the requested field list contains
	// the same name twice.
	ErrDuplicateField = errors.New("duplicate field name in request")

	// ErrBackendUnavailable covers network, auth, and server-side failures of
	// the generation backend.
	ErrBackendUnavailable = errors.New("generation backend unavailable")

	// ErrBackendTimeout is returned when the generation backend does not
	// answer within the configured deadline.
	ErrBackendTimeout = errors.New("generation backend timed out")

	// ErrUnrecoverableOutput is returned when no recovery stage could parse a
	// JSON object out of the model's output.
	ErrUnrecoverableOutput = errors.New("model output could not be parsed as a JSON object")

	// ErrTranscriptionFailed covers failures of the speech-to-text collaborator.
	ErrTranscriptionFailed = errors.New("audio transcription failed")

	// ErrNoArchivedAudio is returned when audio playback is requested for an
	// incident without an archived recording.
	ErrNoArchivedAudio = errors.New("incident has no archived audio")

	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownProfile     = errors.New("unknown field profile")
	ErrEmptyNarrative     = errors.New("narrative text is empty")
	ErrEmptyAudio         = errors.New("audio upload is empty")
	ErrUnsupportedAudio   = errors.New("unsupported audio content type")
	ErrAudioTooLarge      = errors.New("audio exceeds maximum allowed size")
)
