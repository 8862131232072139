package services

import "github.com/sony/gobreaker"

// execute routes a store round-trip through the circuit breaker. A nil
// breaker is a passthrough, which keeps the services constructible in tests.
func execute(cb *gobreaker.CircuitBreaker, op func() (interface{}, error)) (interface{}, error) {
	if cb == nil {
		return op()
	}
	return cb.Execute(op)
}
