package utils

import (
	"errors"
	"log"
	"strings"
)

// CheckWarn logs a warning and returns true if err is not nil
func CheckWarn(err error, context string) bool {
	if err != nil {
		log.Printf("Warning - %s: %v", context, err)
		return true
	}
	return false
}

// Message returns err's text for an operator, or fallback when err carries none
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// IsAny reports whether err matches any of targets
func IsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
