// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

import (
	"fmt"
	"io"

	"golang.org/x/xerrors"

	"github.com/yepanl/go-tpm2lite/mu"
)

// TPMContext executes commands against a TPM via a transmission interface.
// It owns fixed command and response buffers that are reused across calls -
// buffers never grow, and at most one decoded response is alive at a time.
// Methods that return data from the response buffer copy it out first, so
// their results remain valid across calls. A TPMContext is not safe for
// concurrent use.
type TPMContext struct {
	tcti   TCTI
	policy Policy

	cbuf [maxCommandSize]byte
	rbuf [maxResponseSize]byte
}

// NewTPMContext creates a new TPMContext that communicates over the supplied
// transmission interface, decoding responses with DefaultPolicy.
func NewTPMContext(tcti TCTI) *TPMContext {
	return &TPMContext{tcti: tcti, policy: DefaultPolicy}
}

// SetPolicy changes the response decoding policy for subsequent commands.
func (t *TPMContext) SetPolicy(policy Policy) {
	t.policy = policy
}

// Close calls Close on the transmission interface.
func (t *TPMContext) Close() error {
	if err := t.tcti.Close(); err != nil {
		return &TctiError{"close", err}
	}

	return nil
}

// RunCommand marshals and transmits the command defined by the specified
// command code and request body, then receives and decodes the response. It
// does not return an error if the TPM responds with an error code - use
// DecodeResponseCode on the returned header, or the NVRead/NVWrite wrappers.
//
// The returned Response references the context's internal response buffer.
// It is invalidated by the next command executed on this context.
func (t *TPMContext) RunCommand(command CommandCode, body interface{}) (*Response, error) {
	n, err := t.policy.MarshalCommand(command, body, t.cbuf[:])
	if err != nil {
		return nil, err
	}

	if _, err := t.tcti.Write(t.cbuf[:n]); err != nil {
		return nil, &TctiError{"write", err}
	}

	if _, err := io.ReadFull(t.tcti, t.rbuf[:HeaderSize]); err != nil {
		if xerrors.Is(err, io.ErrUnexpectedEOF) || xerrors.Is(err, io.EOF) {
			return nil, &InvalidResponseError{command, "insufficient bytes for response header"}
		}
		return nil, &TctiError{"read", err}
	}

	r := mu.NewReader(t.rbuf[:HeaderSize])
	r.Skip(2)
	size := r.ReadUint32()
	if size < HeaderSize || size > maxResponseSize {
		return nil, &InvalidResponseError{command, fmt.Sprintf("invalid responseSize value (%d)", size)}
	}

	if _, err := io.ReadFull(t.tcti, t.rbuf[HeaderSize:size]); err != nil {
		if xerrors.Is(err, io.ErrUnexpectedEOF) || xerrors.Is(err, io.EOF) {
			return nil, &InvalidResponseError{command, fmt.Sprintf("insufficient bytes for response payload (expected %d)", size)}
		}
		return nil, &TctiError{"read", err}
	}

	return t.policy.UnmarshalResponse(command, t.rbuf[:size])
}

// NVRead executes the TPM2_NV_Read command against the platform hierarchy
// with the empty password session, reading size bytes at offset from the NV
// index at the specified handle. The result is a copy and remains valid
// after further commands on this context.
func (t *TPMContext) NVRead(index Handle, size, offset uint16) ([]byte, error) {
	rsp, err := t.RunCommand(CommandNVRead, &NVReadRequest{Index: index, Size: size, Offset: offset})
	if err != nil {
		return nil, err
	}
	if err := DecodeResponseCode(CommandNVRead, rsp.Header.ResponseCode); err != nil {
		return nil, err
	}
	if rsp.NVRead == nil {
		return nil, &InvalidResponseError{CommandNVRead, "no parameter area in successful response"}
	}

	data := make([]byte, len(rsp.NVRead.Data))
	copy(data, rsp.NVRead.Data)
	return data, nil
}

// NVWrite executes the TPM2_NV_Write command against the platform hierarchy
// with the empty password session, writing data at offset to the NV index at
// the specified handle.
func (t *TPMContext) NVWrite(index Handle, data []byte, offset uint16) error {
	rsp, err := t.RunCommand(CommandNVWrite, &NVWriteRequest{Index: index, Data: MaxNVBuffer(data), Offset: offset})
	if err != nil {
		return err
	}
	return DecodeResponseCode(CommandNVWrite, rsp.Header.ResponseCode)
}
