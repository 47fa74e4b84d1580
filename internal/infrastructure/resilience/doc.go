/*
Package resilience provides the circuit breaker that guards outbound
integration calls.

	breaker := resilience.New("github", resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
	})

	token, err := resilience.Do(ctx, breaker, func(ctx context.Context) (string, error) {
		return exchange(ctx, code)
	})

States move Closed -> Open after ReadyToTrip, Open -> Half-Open after
Timeout, and Half-Open -> Closed after MaxRequests consecutive successes.
A failure while half-open reopens the breaker. Caller cancellation is not
counted as an upstream failure.
*/
package resilience
