package grid

import "time"

// Polling intervals for Eventually-style assertions.
const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)
