package application

import "expvar"

var (
	registrationsSucceeded = expvar.NewInt("registrations_succeeded")
	registrationsDuplicate = expvar.NewInt("registrations_duplicate")
	registrationsFailed    = expvar.NewInt("registrations_failed")
)
