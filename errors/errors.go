/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrStructuralWrite is returned when the output sink itself fails. It aborts the export.
	ErrStructuralWrite = errors.New("structural write failed")

	// ErrBinaryRead is returned when a binary source fails mid-read
	ErrBinaryRead = errors.New("binary read failed")

	// ErrMissingAttachment is returned when a node carries no attachment content
	ErrMissingAttachment = errors.New("missing attachment data")

	// ErrNotFound is returned when a node is not found in a source
	ErrNotFound = errors.New("node not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrMaxDepthExceeded is returned when a tree is nested deeper than allowed
	ErrMaxDepthExceeded = errors.New("maximum tree depth exceeded")
)

// StructuralWriteError wraps a failure of the JSON output sink.
type StructuralWriteError struct {
	Op  string
	Err error
}

func (e *StructuralWriteError) Error() string {
	return fmt.Sprintf("structural write failed during %s: %v", e.Op, e.Err)
}

func (e *StructuralWriteError) Is(target error) bool {
	return target == ErrStructuralWrite
}

func (e *StructuralWriteError) Unwrap() error {
	return e.Err
}

// BinaryReadError wraps a failure of a binary property's byte source.
type BinaryReadError struct {
	Property string
	Err      error
}

func (e *BinaryReadError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("read of binary property %q failed: %v", e.Property, e.Err)
	}
	return fmt.Sprintf("binary read failed: %v", e.Err)
}

func (e *BinaryReadError) Is(target error) bool {
	return target == ErrBinaryRead
}

func (e *BinaryReadError) Unwrap() error {
	return e.Err
}

// MissingAttachmentError represents a node that could not be exported as an attachment
type MissingAttachmentError struct {
	Node   string
	Reason string
}

func (e *MissingAttachmentError) Error() string {
	return fmt.Sprintf("node %q is not an attachment: %s", e.Node, e.Reason)
}

func (e *MissingAttachmentError) Is(target error) bool {
	return target == ErrMissingAttachment
}

// NotFoundError represents an error when a node is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for creating errors

// NewStructuralWriteError creates a new StructuralWriteError
func NewStructuralWriteError(op string, err error) error {
	return &StructuralWriteError{Op: op, Err: err}
}

// NewBinaryReadError creates a new BinaryReadError
func NewBinaryReadError(property string, err error) error {
	return &BinaryReadError{Property: property, Err: err}
}

// NewMissingAttachmentError creates a new MissingAttachmentError
func NewMissingAttachmentError(node, reason string) error {
	return &MissingAttachmentError{Node: node, Reason: reason}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(nodeType, key string) error {
	return &NotFoundError{Type: nodeType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsStructuralWrite checks if an error is a structural write error
func IsStructuralWrite(err error) bool {
	return errors.Is(err, ErrStructuralWrite)
}

// IsBinaryRead checks if an error is a binary read error
func IsBinaryRead(err error) bool {
	return errors.Is(err, ErrBinaryRead)
}

// IsMissingAttachment checks if an error is a missing attachment error
func IsMissingAttachment(err error) bool {
	return errors.Is(err, ErrMissingAttachment)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
