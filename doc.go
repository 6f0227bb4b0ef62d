/*
Package tpm2lite implements the small slice of the TPM 2.0 command protocol
needed by verified-boot firmware: building TPM2_NV_Read and TPM2_NV_Write
command packets and decoding their responses, within caller-owned fixed-size
buffers.

This documentation refers to TPM commands and types that are described in more
detail in the TPM 2.0 Library Specification, which can be found at
https://trustedcomputinggroup.org/resource/tpm-library-specification/.

The marshalling boundary is the pair MarshalCommand and UnmarshalResponse.
MarshalCommand serializes a command packet (header, password session area and
command parameters) into a supplied buffer and never writes outside it.
UnmarshalResponse decodes a response packet into a caller-owned Response,
enforcing that every byte of the response is accounted for. Neither performs
any I/O and both are safe to call with adversarial input.

Communication with Linux TPM character devices and TPM simulators implementing
the Microsoft TPM2 simulator interface is supported for callers that want this
package to also run the commands. TPMContext wraps a TCTI with fixed
command/response buffers and exposes NVRead and NVWrite:

	tcti, err := tpm2lite.OpenTPMDevice("/dev/tpm0")
	if err != nil {
		return err
	}
	tpm := tpm2lite.NewTPMContext(tcti)
	defer tpm.Close()

	data, err := tpm.NVRead(0x01000001, 32, 0)

Only the empty-password session is supported; there is no session-based
cryptography of any kind.
*/
package tpm2lite
