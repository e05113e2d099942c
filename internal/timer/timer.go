package timer

import (
	"sync/atomic"
	"time"
)

// TimeFormat is the format of the Date header, as in RFC 9110, 5.6.7. The time must
// be in UTC.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Time contains the unix-time in milliseconds updated every [Resolution] milliseconds
var Time = new(atomic.Int64)

var date = new(atomic.Pointer[string])

func Now() time.Time {
	millis := Time.Load()
	return time.Unix(millis/1000, (millis%1000)*1e6)
}

// Date returns the current time formatted for the Date header. The value is shared
// and must not be modified.
func Date() string {
	return *date.Load()
}

// Resolution is the frequency at which time is updated. Default 500ms are
// precise enough for setting I/O deadlines and stamping responses
const Resolution = 500 * time.Millisecond

func tick() {
	now := time.Now()
	Time.Store(now.UnixMilli())
	formatted := now.UTC().Format(TimeFormat)
	date.Store(&formatted)
}

func init() {
	// there is no guarantee that the goroutine will be started immediately. If it won't,
	// some rapid usage of the timer will result in zero-time, which isn't great actually
	tick()

	go func() {
		for {
			time.Sleep(Resolution)
			tick()
		}
	}()
}
