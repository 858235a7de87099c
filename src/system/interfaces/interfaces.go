package interfaces

// LoggerInterface is the sink the archivist writes finished log lines to.
// *log.Logger satisfies it.
type LoggerInterface interface {
	Println(v ...interface{})
}
