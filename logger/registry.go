package logger

import "sync"

// components holds the loggers routed to library components such as
// "source" or "sink". A component without an entry logs through the
// global logger.
var components sync.Map

// Register routes the logs of component to l. A nil l removes the route.
func Register(component string, l *Logger) {
	if l == nil {
		components.Delete(component)
		return
	}
	components.Store(component, l)
}

// Get returns the logger routed to component, or the global logger tagged
// with the component name.
func Get(component string) *Logger {
	if l, ok := components.Load(component); ok {
		return l.(*Logger)
	}
	return WithComponent(component)
}

// Reset drops every route set by Register.
func Reset() {
	components.Clear()
}
