package conf

// Audio format constants for the capture and export paths.
const (
	BitDepth    = 16 // bits per sample on the capture path
	NumChannels = 1  // the model consumes mono audio

	// DefaultChunkSize is used when the chunk size can not be derived
	// from the model filename.
	DefaultChunkSize = 512
)
