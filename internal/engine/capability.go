package engine

// Capability is the inference backend consumed by the engine: it maps one
// fixed-length chunk of samples to a pitch, confidence and amplitude triple.
// Implementations do not need to be safe for concurrent use, the engine
// serializes all invocations through its ModelSlot.
type Capability interface {
	// Invoke runs inference on exactly one chunk. Invoking on an all-zero
	// chunk is valid and used to advance any recurrent state the backend
	// holds.
	Invoke(chunk []float32) (pitch, confidence, amplitude float64, err error)
	// Close releases backend resources. The capability must not be invoked
	// after Close.
	Close() error
}

// CapabilityBuilder constructs a fully-prepared replacement capability
// together with its chunk size. A builder may fail, in which case the
// engine keeps serving with the previous capability.
type CapabilityBuilder func() (capability Capability, chunkSize int, err error)
