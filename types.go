// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

import (
	"github.com/yepanl/go-tpm2lite/mu"
)

// CommandCode corresponds to the TPM_CC type.
type CommandCode uint32

// ResponseCode corresponds to the TPM_RC type.
type ResponseCode uint32

// StructTag corresponds to the TPM_ST type.
type StructTag uint16

// Handle corresponds to the TPM_HANDLE type.
type Handle uint32

// Nonce corresponds to the nonce field of an authorization.
type Nonce []byte

// Auth corresponds to an authorization value.
type Auth []byte

// SessionAttributes corresponds to the TPMA_SESSION type.
type SessionAttributes uint8

// MaxNVBuffer corresponds to the TPM2B_MAX_NV_BUFFER type. When decoded from
// a response it references the response buffer directly rather than a copy,
// so it is only valid for as long as that buffer is.
type MaxNVBuffer []byte

// CommandHeader is the header for a TPM command.
type CommandHeader struct {
	Tag         StructTag
	CommandSize uint32
	CommandCode CommandCode
}

// ResponseHeader is the header for the TPM's response to a command.
type ResponseHeader struct {
	Tag          StructTag
	ResponseSize uint32
	ResponseCode ResponseCode
}

// AuthCommand corresponds to a TPMS_AUTH_COMMAND structure - the per-command
// authorization carried in a command's session area.
type AuthCommand struct {
	SessionHandle Handle
	Nonce         Nonce
	SessionAttrs  SessionAttributes
	AuthValue     Auth
}

// marshal writes the authorization area for a single session: a 4-byte size
// field covering everything after it, followed by the session fields. The
// size is only known once the variable length fields have been written, so
// a slot is reserved first and resolved afterwards.
func (a *AuthCommand) marshal(w *mu.Writer) {
	size := w.Reserve32()
	base := w.Len()

	w.WriteUint32(uint32(a.SessionHandle))
	w.WriteSizedBytes(a.Nonce)
	w.WriteUint8(uint8(a.SessionAttrs))
	w.WriteSizedBytes(a.AuthValue)

	size.Resolve(uint32(w.Len() - base))
}

// pwAuthCommand returns the authorization for the permanently available
// password session with an empty password, which is the only session type
// this package supports.
func pwAuthCommand() AuthCommand {
	return AuthCommand{SessionHandle: HandlePW}
}

// Response is the decoded form of a response packet. It is owned by the
// caller of UnmarshalResponse - nothing is shared or reused across calls.
// NVRead is set only when a NV_Read response body was decoded.
type Response struct {
	Header ResponseHeader
	NVRead *NVReadResponse
}
