package store

// Campaign recipient ENUMs
const (
	RecipientStatusPending = "pending"
	RecipientStatusSent    = "sent"
	RecipientStatusFailed  = "failed"
	RecipientStatusSkipped = "skipped"
)

// Campaign attachment ENUMs
const (
	MediaTypeImage    = "image"
	MediaTypeVideo    = "video"
	MediaTypeAudio    = "audio"
	MediaTypeDocument = "document"
)

// LeadStatusActive is the relationship status a lead needs to be part of an audience.
const LeadStatusActive = "active"

// MaxErrorMessageLength bounds the stored per-recipient error detail.
const MaxErrorMessageLength = 500

// RecipientInsertBatchSize bounds the number of rows sent in one INSERT.
const RecipientInsertBatchSize = 500

// IsValidMediaType reports whether t is a supported attachment kind.
func IsValidMediaType(t string) bool {
	switch t {
	case MediaTypeImage, MediaTypeVideo, MediaTypeAudio, MediaTypeDocument:
		return true
	}
	return false
}
