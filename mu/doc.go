/*
Package mu provides bounds-checked marshalling to and unmarshalling from the
TPM wire format, operating on caller-owned buffers without any dynamic
allocation.

All multi-byte integers are big-endian, as mandated by the TPM 2.0 Library
Specification regardless of host byte order.

Writer and Reader both implement a sticky error discipline: the first
operation that would move outside the buffer records an error and every
subsequent operation on the same cursor becomes a no-op. This allows a caller
to chain a sequence of field operations and check Error once at the end,
which is how the command marshalling code in the parent package is written.
Values returned from a failed Reader are zero - callers must check Error, not
the returned value, to detect failure.

Writer supports reserving a size field before its value is known via
Reserve16 and Reserve32, which return a Reservation that is resolved once the
dependent bytes have been written. This is how TPM structures with leading
size fields that cover their own contents (the session area, the command
header) are encoded in a single pass.

Reader.ReadBytes and Reader.ReadSizedBytes return subslices of the source
buffer rather than copies. The returned bytes are only valid for as long as
the source buffer is.
*/
package mu
