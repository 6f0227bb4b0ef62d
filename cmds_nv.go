// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

// Section 31 - Non-volatile Storage

import (
	"fmt"

	"github.com/yepanl/go-tpm2lite/mu"
)

// NVReadRequest is the request body for TPM2_NV_Read.
type NVReadRequest struct {
	Index  Handle // NV index to read from
	Size   uint16 // Number of bytes to read
	Offset uint16 // Octet offset into the index
}

// NVWriteRequest is the request body for TPM2_NV_Write.
type NVWriteRequest struct {
	Index  Handle      // NV index to write to
	Data   MaxNVBuffer // Data to write
	Offset uint16      // Octet offset into the index
}

// NVReadResponse is the response body for TPM2_NV_Read. Data references the
// response buffer it was decoded from rather than a copy.
type NVReadResponse struct {
	ParamSize uint32
	Data      MaxNVBuffer
}

// Both NV commands are authorized with the platform hierarchy and the empty
// password session, which is all the pre-OS environment this package serves
// ever uses.

func marshalNVRead(w *mu.Writer, body interface{}) (StructTag, error) {
	cmd, ok := body.(*NVReadRequest)
	if !ok {
		return 0, fmt.Errorf("invalid request body type (%T)", body)
	}

	w.WriteUint32(uint32(HandlePlatform))
	w.WriteUint32(uint32(cmd.Index))
	auth := pwAuthCommand()
	auth.marshal(w)
	w.WriteUint16(cmd.Size)
	w.WriteUint16(cmd.Offset)

	return TagSessions, nil
}

func marshalNVWrite(w *mu.Writer, body interface{}) (StructTag, error) {
	cmd, ok := body.(*NVWriteRequest)
	if !ok {
		return 0, fmt.Errorf("invalid request body type (%T)", body)
	}

	w.WriteUint32(uint32(HandlePlatform))
	w.WriteUint32(uint32(cmd.Index))
	auth := pwAuthCommand()
	auth.marshal(w)
	w.WriteSizedBytes(cmd.Data)
	w.WriteUint16(cmd.Offset)

	return TagSessions, nil
}

func unmarshalNVRead(r *mu.Reader, p Policy, rsp *Response) error {
	nvr := &NVReadResponse{}

	// Total size of the parameter area.
	nvr.ParamSize = r.ReadUint32()
	nvr.Data = MaxNVBuffer(r.ReadSizedBytes())
	if err := r.Error(); err != nil {
		return &InvalidResponseError{CommandNVRead, fmt.Sprintf("cannot unmarshal NV buffer: %v", err)}
	}

	// The parameter area holds exactly the sized NV buffer, so its
	// declared size must equal the buffer length plus the 2-byte size
	// field.
	if nvr.ParamSize != uint32(len(nvr.Data))+2 {
		return &InvalidResponseError{CommandNVRead,
			fmt.Sprintf("parameterSize (%d) does not match NV buffer size (%d)", nvr.ParamSize, len(nvr.Data))}
	}

	// What remains is the acknowledgment for the password session. It
	// should be 5 bytes - anything else is reported, and tolerated only
	// under the default policy.
	if n := r.Len(); n != authTrailerSize {
		logger.Debugf("unexpected authorization section size %d in NV_Read response", n)
		if p.StrictAuthTrailer {
			return &InvalidResponseError{CommandNVRead, fmt.Sprintf("unexpected authorization section size %d", n)}
		}
	}
	r.Skip(r.Len())

	rsp.NVRead = nvr
	return nil
}

func unmarshalNVWrite(r *mu.Reader, p Policy, rsp *Response) error {
	// The body only contains the session acknowledgment, which can be
	// safely ignored.
	r.Skip(r.Len())
	return nil
}
