package tools

import (
	"fmt"
	"log"
	"time"
)

var isEnabled = true
var printTimestamp = true

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

// Prints CLI progress messages unless the logger is disabled
func LogOutput(val ...interface{}) {
	if !isEnabled {
		return
	}
	if printTimestamp {
		log.Println(append([]interface{}{"[" + time.Now().Format("2006-01-02 15.04:05.000") + "]"}, val...)...)
		return
	}
	log.Println(val...)
}

func LogOutputf(format string, args ...interface{}) {
	LogOutput(fmt.Sprintf(format, args...))
}
