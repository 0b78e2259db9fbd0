package clock

import "time"

// NowFunc returns current time. Override in tests to pin record timing.
var NowFunc = time.Now

// Now returns the current time as seen by job, task and action records.
func Now() time.Time { return NowFunc() }
