package domain

// IncidentSource records how the narrative reached the system.
type IncidentSource string

const (
	SourceText  IncidentSource = "text"
	SourceAudio IncidentSource = "audio"
)

// UserRole defines the API role hierarchy.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// ExportFormat selects the tabular export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// AllowedAudioTypes maps accepted upload MIME types to the file extension
// used for object-storage keys.
var AllowedAudioTypes = map[string]string{
	"audio/wav":   ".wav",
	"audio/wave":  ".wav",
	"audio/x-wav": ".wav",
	"audio/mpeg":  ".mp3",
	"audio/mp4":   ".m4a",
	"audio/ogg":   ".ogg",
	"audio/webm":  ".webm",
	"audio/flac":  ".flac",
}

// ExtensionForAudioType returns the storage extension for an accepted audio
// MIME type, or ".bin" when the type is unrecognized.
func ExtensionForAudioType(contentType string) string {
	if ext, ok := AllowedAudioTypes[contentType]; ok {
		return ext
	}
	return ".bin"
}
