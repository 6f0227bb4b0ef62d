// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

const (
	// TagNoSessions corresponds to TPM_ST_NO_SESSIONS, used for commands
	// and responses that carry no authorization area.
	TagNoSessions StructTag = 0x8001

	// TagSessions corresponds to TPM_ST_SESSIONS, used for commands and
	// responses that carry an authorization area.
	TagSessions StructTag = 0x8002
)

const (
	CommandNVWrite CommandCode = 0x00000137 // TPM_CC_NV_Write
	CommandNVRead  CommandCode = 0x0000014e // TPM_CC_NV_Read
)

const (
	// HandlePW corresponds to TPM_RS_PW, the handle of the permanently
	// available password authorization session.
	HandlePW Handle = 0x40000009

	// HandlePlatform corresponds to TPM_RH_PLATFORM.
	HandlePlatform Handle = 0x4000000c
)

// ResponseSuccess corresponds to TPM_RC_SUCCESS.
const ResponseSuccess ResponseCode = 0

// HeaderSize is the size of a command or response header on the wire: a
// 2-byte tag, a 4-byte size and a 4-byte command or response code.
const HeaderSize = 10

const (
	maxCommandSize  = 4096
	maxResponseSize = 4096
)

// authTrailerSize is the length of the session acknowledgment that follows
// the parameter area in a successful NV_Read response: a 2-byte nonce size,
// a session attributes byte and a 2-byte HMAC size, all zero for a password
// session.
const authTrailerSize = 5
