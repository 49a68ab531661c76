package chunking

// Config holds the tuning parameters of the chunking engine. All values
// are externally supplied; the defaults below are starting points, not
// business rules.
type Config struct {
	// MaximumChunkSize is the character budget for a single text-strategy
	// chunk.
	MaximumChunkSize int
	// YToleranceRatio scales the mean line height into the vertical
	// tolerance used when grouping lines into visual rows.
	YToleranceRatio float64
	// MaxVerticalGap is the merger's spatial threshold, in normalized page
	// units: a larger jump between consecutive chunks starts a new group.
	MaxVerticalGap float64
	// LineChunkCharLimit decides whether a line-structured table is emitted
	// as a single chunk or one chunk per visual row.
	LineChunkCharLimit int
	// WordLimit is the merger's word budget per merged chunk.
	WordLimit int
}

// DefaultConfig returns the tuning values the pipeline ships with.
func DefaultConfig() Config {
	return Config{
		MaximumChunkSize:   80,
		YToleranceRatio:    0.5,
		MaxVerticalGap:     0.5,
		LineChunkCharLimit: 300,
		WordLimit:          80,
	}
}
