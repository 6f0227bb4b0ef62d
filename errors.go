// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

import (
	"fmt"
)

// MarshalError is returned from MarshalCommand if a command cannot be
// serialized, either because the command code is unsupported, the request
// body has the wrong type, or the destination buffer is too small. The
// destination buffer must not be transmitted after this error - its contents
// are undefined.
type MarshalError struct {
	Command CommandCode
	msg     string
}

func (e *MarshalError) Error() string {
	return fmt.Sprintf("cannot marshal command %s: %v", e.Command, e.msg)
}

// InvalidResponseError is returned from UnmarshalResponse if the TPM's
// response is invalid: one that is shorter than the response header, one
// whose body cannot be decoded for the supplied command code, or one with
// bytes left over after the body has been decoded. Response buffers originate
// from an external peer, so this error must be handled rather than treated as
// a programming mistake.
type InvalidResponseError struct {
	Command CommandCode
	msg     string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response for command %s: %v", e.Command, e.msg)
}

// TPMError is returned from any TPMContext method that executes a command if
// the TPM responds with a code other than TPM_RC_SUCCESS.
type TPMError struct {
	Command CommandCode
	Code    ResponseCode
}

func (e *TPMError) Error() string {
	return fmt.Sprintf("TPM returned response code 0x%08x for command %s", uint32(e.Code), e.Command)
}

// TctiError is returned from any TPMContext method if the transmission
// interface returns an error.
type TctiError struct {
	Op  string // The operation that caused the error
	err error
}

func (e *TctiError) Error() string {
	return fmt.Sprintf("cannot complete %s operation on TCTI: %v", e.Op, e.err)
}

func (e *TctiError) Unwrap() error {
	return e.err
}

// DecodeResponseCode maps the response code in a decoded response header to
// an error. It returns nil for TPM_RC_SUCCESS and a *TPMError for anything
// else.
func DecodeResponseCode(command CommandCode, code ResponseCode) error {
	if code == ResponseSuccess {
		return nil
	}
	return &TPMError{Command: command, Code: code}
}
