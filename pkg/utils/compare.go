package utils

import (
	"github.com/nats-io/nats.go"
)

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

// StreamConfigEqual reports whether two NATS stream configurations match on
// the properties we manage. Server-populated fields are ignored.
func StreamConfigEqual(a, b nats.StreamConfig) bool {
	return a.Name == b.Name &&
		a.Retention == b.Retention &&
		a.MaxMsgs == b.MaxMsgs &&
		a.MaxAge == b.MaxAge &&
		a.Storage == b.Storage &&
		stringSlicesEqual(a.Subjects, b.Subjects)
}

// ConsumerConfigEqual reports whether two NATS consumer configurations match
// on the properties we manage. The webhook consumer pins per-tenant subjects
// through FilterSubjects, so both filter forms are compared.
func ConsumerConfigEqual(a, b nats.ConsumerConfig) bool {
	return a.Durable == b.Durable &&
		a.AckPolicy == b.AckPolicy &&
		a.FilterSubject == b.FilterSubject &&
		stringSlicesEqual(a.FilterSubjects, b.FilterSubjects) &&
		a.MaxDeliver == b.MaxDeliver
}
