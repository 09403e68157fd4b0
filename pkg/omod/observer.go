// SPDX-License-Identifier: MPL-2.0

package omod

// Observer receives progress messages from Package and Verify. Arguments
// after msg are alternating key/value pairs. *log.Logger from
// github.com/charmbracelet/log satisfies this interface.
type Observer interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
}

// NopObserver discards every message.
type NopObserver struct{}

// Debug implements Observer.
func (NopObserver) Debug(any, ...any) {}

// Info implements Observer.
func (NopObserver) Info(any, ...any) {}

func observerOrNop(obs Observer) Observer {
	if obs == nil {
		return NopObserver{}
	}
	return obs
}
