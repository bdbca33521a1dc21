package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned when a requested resource doesn't exist
var ErrNotFound = errors.New("resource not found")

// ErrInvalidInput is returned when the provided input is invalid
var ErrInvalidInput = errors.New("invalid input")

// ErrDeviceUnavailable is returned when a device can't be reached or is not responding
var ErrDeviceUnavailable = errors.New("device unavailable")

// ErrInternal is returned for unexpected internal errors
var ErrInternal = errors.New("internal error")

// ErrConnectionFailed is returned when discovery or the handshake with a switcher fails
var ErrConnectionFailed = errors.New("connection failed")

// ErrLinkLost is returned when a device call fails on an established session.
// The session has already been torn down when this is returned.
var ErrLinkLost = errors.New("link lost")

// ErrCapabilityUnsupported is returned when the device lacks a required capability
var ErrCapabilityUnsupported = errors.New("capability unsupported")

// ErrInvalidState is returned when an operation is not allowed in the current session state
var ErrInvalidState = errors.New("invalid state transition")

// ErrNotConnected is returned when an operation requires a connected session
var ErrNotConnected = errors.New("not connected")

// LogErrorAndReturn logs an error with structured context and returns it
func LogErrorAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	// Don't modify nil errors
	if err == nil {
		return nil
	}

	logger.Error(message, append([]any{"error", err}, args...)...)
	return err
}

// WrapErrorf wraps an error with additional context using fmt.Errorf
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// IsNotFound returns true if the error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput returns true if the error is or wraps ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDeviceUnavailable returns true if the error is or wraps ErrDeviceUnavailable
func IsDeviceUnavailable(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable)
}

// IsConnectionFailed returns true if the error is or wraps ErrConnectionFailed
func IsConnectionFailed(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsLinkLost returns true if the error is or wraps ErrLinkLost
func IsLinkLost(err error) bool {
	return errors.Is(err, ErrLinkLost)
}

// IsCapabilityUnsupported returns true if the error is or wraps ErrCapabilityUnsupported
func IsCapabilityUnsupported(err error) bool {
	return errors.Is(err, ErrCapabilityUnsupported)
}

// IsInvalidState returns true if the error is or wraps ErrInvalidState
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsNotConnected returns true if the error is or wraps ErrNotConnected
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// NotFoundf returns a formatted ErrNotFound error
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidInputf returns a formatted ErrInvalidInput error
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// DeviceUnavailablef returns a formatted ErrDeviceUnavailable error
func DeviceUnavailablef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDeviceUnavailable)...)
}

// Internalf returns a formatted ErrInternal error
func Internalf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInternal)...)
}

// ConnectionFailedf returns a formatted ErrConnectionFailed error
func ConnectionFailedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConnectionFailed)...)
}

// LinkLostf returns a formatted ErrLinkLost error
func LinkLostf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrLinkLost)...)
}

// CapabilityUnsupportedf returns a formatted ErrCapabilityUnsupported error
func CapabilityUnsupportedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrCapabilityUnsupported)...)
}

// InvalidStatef returns a formatted ErrInvalidState error
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// NotConnectedf returns a formatted ErrNotConnected error
func NotConnectedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotConnected)...)
}
