// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

// TCTI represents a communication channel to a TPM implementation. This
// package performs no I/O outside of implementations of this interface.
type TCTI interface {
	// Read is used to receive a response to a previously transmitted command. The implementation
	// must support partial reading of a response, and must return io.EOF when there are no more
	// bytes of a response left to read.
	Read(p []byte) (int, error)

	// Write is used to transmit a serialized command to the TPM implementation. A command must be
	// transmitted in a single write.
	Write(p []byte) (int, error)

	Close() error
}
