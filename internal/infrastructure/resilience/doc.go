/*
Package resilience provides a circuit breaker for calls to a remote
workspace server.

# States

	Closed --[ReadyToTrip]--> Open --[Timeout]--> Half-Open --[MaxRequests successes]--> Closed
	                                                  |
	                                              [failure]
	                                                  v
	                                                 Open

While open, calls fail with ErrCircuitOpen without running. While
half-open, at most MaxRequests trial calls run; the rest get
ErrTooManyRequests.

# Usage

	breaker := resilience.New("webide-api", resilience.Settings{
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 5 },
	})

	snap, err := resilience.Call(ctx, breaker, func() (*Snapshot, error) {
		return fetch(ctx)
	})

IsSuccessful lets callers count domain errors (a 404 for an unknown
workspace, say) as successes so that only transport failures and server
errors trip the breaker.
*/
package resilience
