package model

import "errors"

const (
	DefaultSessionDuration = 50
	DefaultBufferTime      = 10
)

var ErrInvalidSettings = errors.New("invalid session settings")

// SessionSettings are global to a professional and apply to every day.
type SessionSettings struct {
	SessionDuration int `json:"sessionDuration" bson:"sessionDuration" firestore:"sessionDuration"`
	BufferTime      int `json:"bufferTime" bson:"bufferTime" firestore:"bufferTime"`
}

// DefaultSessionSettings returns the settings used when a professional has none stored.
func DefaultSessionSettings() SessionSettings {
	return SessionSettings{SessionDuration: DefaultSessionDuration, BufferTime: DefaultBufferTime}
}

// Validate checks that the session has a positive length and a non-negative buffer.
func (s SessionSettings) Validate() error {
	if s.SessionDuration <= 0 {
		return errors.Join(ErrInvalidSettings, errors.New("sessionDuration must be positive"))
	}
	if s.BufferTime < 0 {
		return errors.Join(ErrInvalidSettings, errors.New("bufferTime must not be negative"))
	}
	return nil
}
