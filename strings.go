// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

import (
	"fmt"
)

func (c CommandCode) String() string {
	switch c {
	case CommandNVWrite:
		return "TPM_CC_NV_Write"
	case CommandNVRead:
		return "TPM_CC_NV_Read"
	default:
		return fmt.Sprintf("TPM_CC_%08x", uint32(c))
	}
}

func (t StructTag) String() string {
	switch t {
	case TagNoSessions:
		return "TPM_ST_NO_SESSIONS"
	case TagSessions:
		return "TPM_ST_SESSIONS"
	default:
		return fmt.Sprintf("TPM_ST_%04x", uint16(t))
	}
}
