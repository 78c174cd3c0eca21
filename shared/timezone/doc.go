// Package timezone holds the single application location and the clock the
// rest of the service reads the current time from.
//
// Usage:
//
//	timezone.Init(cfg.App.Timezone)          // once, at boot
//	now := timezone.Now()                    // current time in app location
//	clock := timezone.NewSystemClock()       // injectable source of Now
//	fixed := timezone.NewFixedClock(someTime) // deterministic clock for tests
//
// Only standard IANA names are accepted ("UTC", "Asia/Jakarta",
// "Europe/London"). An unknown or empty name falls back to UTC.
package timezone
