// Package errors defines the typed error taxonomy shared by every codec in
// this module. Every failure a codec can raise carries a Kind so callers can
// branch on category with errors.Is/errors.As instead of string matching.
package errors

import (
	"fmt"
)

// Kind classifies why a codec operation failed.
type Kind int

var messagesByKind map[Kind]string

const (
	// BadHeader: TD0 signature unknown, CRC mismatch, or unsupported version.
	BadHeader Kind = iota
	// AlreadyInForm: requested direction matches the image's current state.
	AlreadyInForm
	// InvalidData: decoder produced an out-of-range symbol or code.
	InvalidData
	// InvalidCode: LZW code exceeds the dictionary and is not the KwKwK case.
	InvalidCode
	// SizeExceeded: input or output exceeded the configured cap.
	SizeExceeded
	// UnexpectedEof: stream ended mid-symbol where a full symbol was required.
	UnexpectedEof
	// Io: upstream I/O failure surfaced unchanged.
	Io
)

var ErrBadHeader = New(BadHeader)
var ErrAlreadyInForm = New(AlreadyInForm)
var ErrInvalidData = New(InvalidData)
var ErrInvalidCode = New(InvalidCode)
var ErrSizeExceeded = New(SizeExceeded)
var ErrUnexpectedEof = New(UnexpectedEof)
var ErrIo = New(Io)

func init() {
	messagesByKind = map[Kind]string{
		BadHeader:     "bad header",
		AlreadyInForm: "image already in requested form",
		InvalidData:   "invalid compressed data",
		InvalidCode:   "invalid code",
		SizeExceeded:  "size cap exceeded",
		UnexpectedEof: "unexpected end of stream",
		Io:            "i/o failure",
	}
}

// StrKind returns the default message for a Kind.
func StrKind(kind Kind) string {
	message, ok := messagesByKind[kind]
	if ok {
		return message
	}
	return fmt.Sprintf("error kind %d not recognized", int(kind))
}
