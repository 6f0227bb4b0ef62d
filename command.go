// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

import (
	"fmt"

	"github.com/yepanl/go-tpm2lite/mu"
)

// Policy controls how the two documented lenient checks behave when decoding
// a response. The zero value preserves the behavior of deployed firmware:
// a header-only response whose declared size disagrees with its actual length
// and a session acknowledgment of unexpected length are logged as diagnostics
// but tolerated. Real hardware responses are known to trigger both paths, so
// tightening either is a compatibility decision, not a bug fix.
type Policy struct {
	// StrictResponseSize rejects header-only responses whose declared
	// size field does not equal the header size.
	StrictResponseSize bool

	// StrictAuthTrailer rejects NV_Read responses whose trailing session
	// acknowledgment is not exactly 5 bytes.
	StrictAuthTrailer bool
}

// DefaultPolicy tolerates both documented size inconsistencies, matching the
// firmware this package derives from.
var DefaultPolicy = Policy{}

// commandDescriptor binds a command code to its body encoder and decoder.
// Supporting a new command means adding an entry here - the dispatch
// functions below never change.
type commandDescriptor struct {
	// marshalBody serializes the request body and returns the structure
	// tag for the command header. Space errors accumulate in the Writer
	// and are checked once by MarshalCommand.
	marshalBody func(w *mu.Writer, body interface{}) (StructTag, error)

	// unmarshalBody decodes the response body into rsp. It is only called
	// when bytes remain after the header.
	unmarshalBody func(r *mu.Reader, p Policy, rsp *Response) error
}

var commands = map[CommandCode]commandDescriptor{
	CommandNVRead:  {marshalNVRead, unmarshalNVRead},
	CommandNVWrite: {marshalNVWrite, unmarshalNVWrite},
}

// MarshalCommand is a wrapper around Policy.MarshalCommand using
// DefaultPolicy.
func MarshalCommand(command CommandCode, body interface{}, buf []byte) (int, error) {
	return DefaultPolicy.MarshalCommand(command, body, buf)
}

// UnmarshalResponse is a wrapper around Policy.UnmarshalResponse using
// DefaultPolicy.
func UnmarshalResponse(command CommandCode, b []byte) (*Response, error) {
	return DefaultPolicy.UnmarshalResponse(command, b)
}

// MarshalCommand serializes a complete command packet - header, session area
// and command parameters - for the specified command into buf, which is
// caller-owned and never grown or written outside of. The body must be a
// pointer to the request type matching the command (*NVReadRequest or
// *NVWriteRequest).
//
// On success it returns the number of bytes of buf that make up the packet,
// with the header's size field equal to that exact length. On failure it
// returns a *MarshalError and buf must not be transmitted.
func (p Policy) MarshalCommand(command CommandCode, body interface{}, buf []byte) (int, error) {
	desc, ok := commands[command]
	if !ok {
		logger.Errorf("request to marshal unsupported command %s", command)
		return 0, &MarshalError{command, "unsupported command"}
	}

	w := mu.NewWriter(buf)
	tagSlot := w.Reserve16()
	sizeSlot := w.Reserve32()
	w.WriteUint32(uint32(command))

	tag, err := desc.marshalBody(w, body)
	if err != nil {
		return 0, &MarshalError{command, err.Error()}
	}
	if err := w.Error(); err != nil {
		return 0, &MarshalError{command, err.Error()}
	}

	// The total size is only known now that the body has been written.
	tagSlot.Resolve(uint32(tag))
	sizeSlot.Resolve(uint32(w.Len()))

	return w.Len(), nil
}

// UnmarshalResponse decodes a complete response packet for the specified
// command. The returned Response is owned by the caller, but any byte slices
// within it (the NV_Read data buffer) reference b directly - they are only
// valid for as long as b is.
//
// A buffer shorter than a response header, a response body for an
// unsupported command, a malformed body, or bytes left over once the body
// has been decoded all result in a *InvalidResponseError. The final
// leftover-bytes check is the authoritative integrity gate: a body decoder
// reporting success is not sufficient on its own.
func (p Policy) UnmarshalResponse(command CommandCode, b []byte) (*Response, error) {
	r := mu.NewReader(b)

	rsp := &Response{}
	rsp.Header.Tag = StructTag(r.ReadUint16())
	rsp.Header.ResponseSize = r.ReadUint32()
	rsp.Header.ResponseCode = ResponseCode(r.ReadUint32())
	if err := r.Error(); err != nil {
		return nil, &InvalidResponseError{command, fmt.Sprintf("insufficient bytes for response header (got %d)", len(b))}
	}

	if r.Len() == 0 {
		// Header-only response. The declared size should match, but
		// responses that disagree are seen in the wild and tolerated
		// under the default policy.
		if rsp.Header.ResponseSize != HeaderSize {
			logger.Debugf("header-only response to command %s declares size %d", command, rsp.Header.ResponseSize)
			if p.StrictResponseSize {
				return nil, &InvalidResponseError{command, fmt.Sprintf("header-only response declares size %d", rsp.Header.ResponseSize)}
			}
		}
		return rsp, nil
	}

	desc, ok := commands[command]
	if !ok {
		logger.Errorf("request to unmarshal unsupported command %s, code 0x%08x, undecoded payload: %x",
			command, uint32(rsp.Header.ResponseCode), b[HeaderSize:])
		return nil, &InvalidResponseError{command, "unsupported command"}
	}

	if err := desc.unmarshalBody(r, p, rsp); err != nil {
		return nil, err
	}
	if err := r.Error(); err != nil {
		return nil, &InvalidResponseError{command, fmt.Sprintf("cannot unmarshal response body: %v", err)}
	}
	if n := r.Len(); n != 0 {
		return nil, &InvalidResponseError{command, fmt.Sprintf("%d byte(s) left unparsed in response of %d bytes", n, rsp.Header.ResponseSize)}
	}

	return rsp, nil
}
