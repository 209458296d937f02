package audioseek

// Option configures behavior when opening audio streams.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	stream, err := audioseek.Open("song.mp3",
//	    audioseek.WithStrictProbe(),
//	    audioseek.WithScanWindow(256*1024),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening streams.
type openOptions struct {
	strictProbe bool  // Fail on any warning
	assumeCBR   bool  // Ignore any embedded index and extrapolate linearly
	scanWindow  int64 // Resync scan window in bytes (0 = default)
	chunkSize   int   // Resync read chunk in bytes (0 = default)
}

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{
		strictProbe: false,
		assumeCBR:   false,
		scanWindow:  0, // DefaultScanWindow
		chunkSize:   0, // DefaultChunkSize
	}
}

// WithStrictProbe treats any probe warning as a fatal error.
//
// By default, audioseek degrades gracefully: a stream with a damaged
// index still opens, falling back to a coarser seek strategy and
// recording what happened in Stream.Warnings. With strict probing
// enabled, any warning fails Open.
func WithStrictProbe() Option {
	return func(o *openOptions) {
		o.strictProbe = true
	}
}

// WithAssumeConstantBitrate ignores any embedded seek index and always
// extrapolates from the first frame's bitrate.
//
// Use this for streams whose index tables are known to be broken (some
// encoders emit tables that do not match the actual data layout).
func WithAssumeConstantBitrate() Option {
	return func(o *openOptions) {
		o.assumeCBR = true
	}
}

// WithScanWindow bounds how many bytes a seek may scan forward while
// realigning to a frame boundary before reporting failure.
//
// The window is a policy knob, not a protocol constant: larger windows
// survive longer runs of garbage at the cost of slower failed seeks.
// Non-positive values select DefaultScanWindow.
func WithScanWindow(bytes int64) Option {
	return func(o *openOptions) {
		o.scanWindow = bytes
	}
}

// WithChunkSize sets the read granularity of the resynchronization
// scan. Non-positive values select DefaultChunkSize.
func WithChunkSize(bytes int) Option {
	return func(o *openOptions) {
		o.chunkSize = bytes
	}
}
