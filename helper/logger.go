package helper

import (
	"github.com/journeymidnight/radosmirror/log"
)

// Global singleton logger
var Logger log.Logger

func PanicOnError(err error, message string) {
	if err != nil {
		panic(message + " " + err.Error())
	}
}
