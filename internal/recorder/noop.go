package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCandle(_ *CandleEvent) error    { return nil }
func (n *NoopRecorder) RecordOverlay(_ *OverlayEvent) error  { return nil }
func (n *NoopRecorder) RecordStatus(_ *StatusSnapshot) error { return nil }
func (n *NoopRecorder) Close() error                         { return nil }
