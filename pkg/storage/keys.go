package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates no stored file exists at the key.
	ErrNotFound = errors.New("stored file not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key could escape the storage root.
	ErrInvalidKey = errors.New("invalid storage key")
)

// KeyError reports which key was rejected and why. It matches ErrInvalidKey.
type KeyError struct {
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidKey, e.Key, e.Reason)
}

func (e *KeyError) Unwrap() error { return ErrInvalidKey }

// validateKey accepts slash-separated relative keys such as "documents/<uuid>/policy.pdf".
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.HasPrefix(key, "/") {
		return &KeyError{Key: key, Reason: "absolute path"}
	}
	if strings.Contains(key, "\\") {
		return &KeyError{Key: key, Reason: "backslash separator"}
	}
	for seg := range strings.SplitSeq(key, "/") {
		switch seg {
		case "":
			return &KeyError{Key: key, Reason: "empty segment"}
		case ".", "..":
			return &KeyError{Key: key, Reason: "relative segment"}
		}
	}
	return nil
}
