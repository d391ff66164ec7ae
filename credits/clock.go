package credits

import "time"

// timeNow is swapped in tests to pin subscription expiry calculations.
var timeNow = time.Now
