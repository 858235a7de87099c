package archivist

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/wabianimation/pcpdeps/src/system/interfaces"
)

const (
	LEVEL_DEBUG   = 1
	LEVEL_INFO    = 2
	LEVEL_WARNING = 3
	LEVEL_ERROR   = 4
	LEVEL_FATAL   = 5
)

// Constants for granular debug levels
const (
	DEBUG_LEVEL_TRACE  = iota + 1 // For tracing execution flow
	DEBUG_LEVEL_INFO              // For informational debug messages
	DEBUG_LEVEL_DETAIL            // For more detailed output
	DEBUG_LEVEL_DUMP              // For dumping entire data structures
	DEBUG_LEVEL_MAX               // The highest, most detailed level
)

var levelNames = map[string]int{
	"debug":   LEVEL_DEBUG,
	"info":    LEVEL_INFO,
	"warning": LEVEL_WARNING,
	"warn":    LEVEL_WARNING,
	"error":   LEVEL_ERROR,
	"fatal":   LEVEL_FATAL,
}

type Archivist struct {
	logFlags   [5]bool
	logger     interfaces.LoggerInterface
	debugLevel int
	component  string
}

type Config struct {
	Logger     interfaces.LoggerInterface
	LogLevel   int
	DebugLevel int
}

// ParseLevel maps a level name like "info" to its LEVEL_* constant.
func ParseLevel(name string) (int, error) {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

func New(conf *Config) *Archivist {
	if conf == nil {
		conf = &Config{}
	}
	archivist := &Archivist{
		logFlags: [5]bool{false, true, true, true, true},
	}
	archivist.SetLogger(conf.Logger)
	archivist.SetLogLevel(conf.LogLevel)

	// debug verbosity only matters when debug lines are written at all
	if conf.LogLevel == LEVEL_DEBUG {
		archivist.SetDebugLevel(conf.DebugLevel)
	}
	return archivist
}

// Named returns an archivist sharing sink and levels whose lines carry the
// given component name.
func (a *Archivist) Named(component string) *Archivist {
	named := *a
	if a.component != "" {
		component = a.component + "." + component
	}
	named.component = component
	return &named
}

// Enabled reports whether lines of the given LEVEL_* are written.
func (a *Archivist) Enabled(level int) bool {
	if level < LEVEL_DEBUG || level > LEVEL_FATAL {
		return false
	}
	return a.logFlags[level-1]
}

// DebugEnabled reports whether Debug lines of the given verbosity are written.
// Hot paths check it before assembling expensive arguments.
func (a *Archivist) DebugEnabled(level int) bool {
	return a.logFlags[LEVEL_DEBUG-1] && level <= a.debugLevel
}

func (a *Archivist) store(message string, stype string, formatted bool, params []interface{}) {
	_, file, line, _ := runtime.Caller(2)
	packageFile := file[strings.LastIndex(file, "/")+1:]

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("|")
	sb.WriteString(stype)
	sb.WriteString("|")
	if a.component != "" {
		sb.WriteString(a.component)
		sb.WriteString("|")
	}
	sb.WriteString(packageFile + "#" + strconv.Itoa(line))
	sb.WriteString("|")
	switch {
	case formatted:
		sb.WriteString(fmt.Sprintf(message, params...))
	case len(params) > 0:
		sb.WriteString(message + "|" + fmt.Sprintf("%+v", params))
	default:
		sb.WriteString(message)
	}

	a.logger.Println(sb.String())
}

func (a *Archivist) Error(message string, params ...interface{}) {
	if a.logFlags[LEVEL_ERROR-1] {
		a.store(message, "error", false, params)
	}
}

func (a *Archivist) ErrorF(message string, params ...interface{}) {
	if a.logFlags[LEVEL_ERROR-1] {
		a.store(message, "error", true, params)
	}
}

func (a *Archivist) Fatal(message string, params ...interface{}) {
	if a.logFlags[LEVEL_FATAL-1] {
		a.store(message, "fatal", false, params)
	}
}

func (a *Archivist) FatalF(message string, params ...interface{}) {
	if a.logFlags[LEVEL_FATAL-1] {
		a.store(message, "fatal", true, params)
	}
}

func (a *Archivist) Info(message string, params ...interface{}) {
	if a.logFlags[LEVEL_INFO-1] {
		a.store(message, "info", false, params)
	}
}

func (a *Archivist) InfoF(message string, params ...interface{}) {
	if a.logFlags[LEVEL_INFO-1] {
		a.store(message, "info", true, params)
	}
}

func (a *Archivist) Warning(message string, params ...interface{}) {
	if a.logFlags[LEVEL_WARNING-1] {
		a.store(message, "warning", false, params)
	}
}

func (a *Archivist) WarningF(message string, params ...interface{}) {
	if a.logFlags[LEVEL_WARNING-1] {
		a.store(message, "warning", true, params)
	}
}

func (a *Archivist) Debug(level int, message string, params ...interface{}) {
	if a.DebugEnabled(level) {
		a.store(message, "debug", false, params)
	}
}

func (a *Archivist) DebugF(level int, message string, params ...interface{}) {
	if a.DebugEnabled(level) {
		a.store(message, "debug", true, params)
	}
}

func (a *Archivist) SetLogLevel(logLevel int) {
	// unset means warning
	if 0 == logLevel {
		logLevel = LEVEL_WARNING
	}

	if logLevel >= LEVEL_DEBUG && logLevel <= LEVEL_FATAL {
		for index := range a.logFlags {
			a.logFlags[index] = logLevel-1 <= index
		}
	} else {
		a.Error("Given LOG_LEVEL is unknown, defaulting to LEVEL_WARNING provided was: ", logLevel)
		a.SetLogLevel(LEVEL_WARNING)
	}
}

func (a *Archivist) SetDebugLevel(level int) {
	if level < 0 {
		level = 0
	}
	a.debugLevel = level
}

func (a *Archivist) SetLogger(logger interfaces.LoggerInterface) {
	if nil == logger {
		logger = log.New(os.Stdout, "", 0)
	}
	a.logger = logger
}
