package trace

// discard drops every event. It backs runs without --trace.
type discard struct{}

func (discard) Emit(*Event)   {}
func (discard) Flush() error  { return nil }
func (discard) Close() error  { return nil }
func (discard) Level() Level  { return LevelOff }
func (discard) Enabled() bool { return false }

// Nop is the tracer used when none is configured.
var Nop Tracer = discard{}
