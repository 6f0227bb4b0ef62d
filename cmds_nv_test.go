// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite_test

import (
	. "gopkg.in/check.v1"

	. "github.com/yepanl/go-tpm2lite"
)

type nvSuite struct{}

var _ = Suite(&nvSuite{})

// nvWriteCommand is the complete packet for writing {0xde, 0xad} at offset 4
// to the NV index at 0x01000001, authorized with the empty password session.
var nvWriteCommand = []byte{
	0x80, 0x02, // TPM_ST_SESSIONS
	0x00, 0x00, 0x00, 0x25, // commandSize (37)
	0x00, 0x00, 0x01, 0x37, // TPM_CC_NV_Write
	0x40, 0x00, 0x00, 0x0c, // TPM_RH_PLATFORM
	0x01, 0x00, 0x00, 0x01, // nvIndex
	0x00, 0x00, 0x00, 0x09, // authorizationSize
	0x40, 0x00, 0x00, 0x09, // TPM_RS_PW
	0x00, 0x00, // nonce size
	0x00,       // session attributes
	0x00, 0x00, // hmac size
	0x00, 0x02, 0xde, 0xad, // data
	0x00, 0x04, // offset
}

func (s *nvSuite) TestMarshalCommandNVWrite(c *C) {
	buf := make([]byte, 64)
	n, err := MarshalCommand(CommandNVWrite, &NVWriteRequest{Index: 0x01000001, Data: MaxNVBuffer{0xde, 0xad}, Offset: 4}, buf)
	c.Assert(err, IsNil)
	c.Check(buf[:n], DeepEquals, nvWriteCommand)
}

// makeNVReadResponse builds a response packet for TPM2_NV_Read carrying the
// supplied data, parameter size field and session acknowledgment.
func makeNVReadResponse(data []byte, paramSize uint32, trailer []byte) []byte {
	b := []byte{0x80, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	b = append(b, byte(paramSize>>24), byte(paramSize>>16), byte(paramSize>>8), byte(paramSize))
	b = append(b, byte(len(data)>>8), byte(len(data)))
	b = append(b, data...)
	b = append(b, trailer...)
	b[5] = byte(len(b))
	return b
}

func (s *nvSuite) TestUnmarshalResponseNVRead(c *C) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	trailer := []byte{0x00, 0x00, 0x01, 0x00, 0x00}
	b := makeNVReadResponse(data, uint32(len(data))+2, trailer)

	rsp, err := UnmarshalResponse(CommandNVRead, b)
	c.Assert(err, IsNil)
	c.Check(rsp.Header.Tag, Equals, TagSessions)
	c.Check(rsp.Header.ResponseCode, Equals, ResponseSuccess)
	c.Assert(rsp.NVRead, NotNil)
	c.Check(rsp.NVRead.ParamSize, Equals, uint32(10))
	c.Check(rsp.NVRead.Data, DeepEquals, MaxNVBuffer(data))
}

func (s *nvSuite) TestUnmarshalResponseNVReadZeroCopy(c *C) {
	data := []byte{0xaa, 0xbb}
	b := makeNVReadResponse(data, 4, []byte{0x00, 0x00, 0x01, 0x00, 0x00})

	rsp, err := UnmarshalResponse(CommandNVRead, b)
	c.Assert(err, IsNil)
	c.Assert(rsp.NVRead, NotNil)

	// The decoded buffer references the response bytes rather than a copy,
	// so it observes changes to them.
	b[16] = 0xcc
	c.Check(rsp.NVRead.Data[0], Equals, byte(0xcc))
}

func (s *nvSuite) TestUnmarshalResponseNVReadParamSizeMismatch(c *C) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	b := makeNVReadResponse(data, uint32(len(data))+3, []byte{0x00, 0x00, 0x01, 0x00, 0x00})

	rsp, err := UnmarshalResponse(CommandNVRead, b)
	c.Check(rsp, IsNil)
	c.Check(err, ErrorMatches, `invalid response for command TPM_CC_NV_Read: parameterSize \(7\) does not match NV buffer size \(4\)`)
}

func (s *nvSuite) TestUnmarshalResponseNVReadBufferTooLarge(c *C) {
	// The NV buffer declares more bytes than the response contains.
	b := []byte{
		0x80, 0x02, 0x00, 0x00, 0x00, 0x12, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x06, // parameterSize
		0x00, 0x20, // buffer size (32 - but only 2 bytes follow)
		0x01, 0x02,
	}

	rsp, err := UnmarshalResponse(CommandNVRead, b)
	c.Check(rsp, IsNil)
	c.Check(err, ErrorMatches, `invalid response for command TPM_CC_NV_Read: cannot unmarshal NV buffer: insufficient data in buffer`)
}

func (s *nvSuite) TestUnmarshalResponseNVReadAuthTrailer(c *C) {
	data := []byte{0x01, 0x02}
	// 4-byte acknowledgment instead of the expected 5.
	b := makeNVReadResponse(data, 4, []byte{0x00, 0x00, 0x01, 0x00})

	rsp, err := UnmarshalResponse(CommandNVRead, b)
	c.Assert(err, IsNil)
	c.Check(rsp.NVRead.Data, DeepEquals, MaxNVBuffer(data))

	p := Policy{StrictAuthTrailer: true}
	rsp, err = p.UnmarshalResponse(CommandNVRead, b)
	c.Check(rsp, IsNil)
	c.Check(err, ErrorMatches, `invalid response for command TPM_CC_NV_Read: unexpected authorization section size 4`)
}

func (s *nvSuite) TestUnmarshalResponseNVWrite(c *C) {
	// The NV_Write response body is the session acknowledgment only, and
	// is discarded without interpretation.
	b := []byte{
		0x80, 0x02, 0x00, 0x00, 0x00, 0x13, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // parameterSize
		0x00, 0x00, 0x01, 0x00, 0x00, // session acknowledgment
	}

	rsp, err := UnmarshalResponse(CommandNVWrite, b)
	c.Assert(err, IsNil)
	c.Check(rsp.Header.Tag, Equals, TagSessions)
	c.Check(rsp.Header.ResponseCode, Equals, ResponseSuccess)
	c.Check(rsp.NVRead, IsNil)
}

func (s *nvSuite) TestNVWriteRoundTrip(c *C) {
	buf := make([]byte, 128)
	n, err := MarshalCommand(CommandNVWrite, &NVWriteRequest{Index: 0x01000001, Data: MaxNVBuffer{0x01}, Offset: 0}, buf)
	c.Assert(err, IsNil)
	c.Check(n, Equals, 36)

	// Synthesize the success response for the command that was just
	// encoded and decode it.
	rsp, err := UnmarshalResponse(CommandNVWrite, []byte{0x80, 0x01, 0x00, 0x00, 0x00, 0x0a, 0x00, 0x00, 0x00, 0x00})
	c.Assert(err, IsNil)
	c.Check(rsp.Header.ResponseCode, Equals, ResponseSuccess)
	c.Check(DecodeResponseCode(CommandNVWrite, rsp.Header.ResponseCode), IsNil)
}
