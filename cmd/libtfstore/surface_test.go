package main

import (
	"testing"
	"unsafe"

	check "gopkg.in/check.v1"

	"github.com/mycok/rfcFreq/boundary"
	"github.com/mycok/rfcFreq/tfstore"
)

var _ = check.Suite(new(SurfaceTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type SurfaceTestSuite struct {
	layer *boundary.Layer
}

func (s *SurfaceTestSuite) SetUpTest(c *check.C) {
	s.layer = boundary.NewLayer(boundary.Config{SavePath: c.MkDir() + "/tfstore.json"})
}

func (s *SurfaceTestSuite) TestNullPointerIsNilKey(c *check.C) {
	c.Assert(copyBytes(nil, 0), check.IsNil)
	c.Assert(copyBytes(nil, 4), check.IsNil)
}

func (s *SurfaceTestSuite) TestEmptyStringIsNonNilKey(c *check.C) {
	buf := []byte{0}

	key := copyBytes(unsafe.Pointer(&buf[0]), 0)
	c.Assert(key, check.NotNil)
	c.Assert(key, check.HasLen, 0)
}

func (s *SurfaceTestSuite) TestBytesAreCopied(c *check.C) {
	buf := []byte("protocol\x00")

	key := copyBytes(unsafe.Pointer(&buf[0]), 8)
	c.Assert(string(key), check.Equals, "protocol")

	buf[0] = 'P'
	c.Assert(string(key), check.Equals, "protocol")
}

func (s *SurfaceTestSuite) TestLookupIntoHit(c *check.C) {
	h := s.layer.CreateTermFreqs()
	s.layer.InsertTermFreqs(h, []byte("tcp"), 0.25)

	out := 42.0
	c.Assert(lookupInto(s.layer, h, []byte("tcp"), &out), check.Equals, true)
	c.Assert(out, check.Equals, 0.25)

	// A NULL out pointer still reports presence.
	c.Assert(lookupInto(s.layer, h, []byte("tcp"), nil), check.Equals, true)
}

func (s *SurfaceTestSuite) TestLookupIntoMissLeavesOutUntouched(c *check.C) {
	h := s.layer.CreateTermFreqs()
	s.layer.InsertTermFreqs(h, []byte(""), 0.5)

	specs := []struct {
		descr string
		h     tfstore.Handle
		key   []byte
	}{
		{"absent key", h, []byte("udp")},
		{"null key", h, nil},
		{"null handle", tfstore.NullHandle, []byte("")},
		{"unknown handle", h + 1000, []byte("")},
		{"invalid utf-8", h, []byte{0xff}},
	}

	for _, spec := range specs {
		out := 42.0
		c.Assert(lookupInto(s.layer, spec.h, spec.key, &out), check.Equals, false, check.Commentf(spec.descr))
		c.Assert(out, check.Equals, 42.0, check.Commentf(spec.descr))
	}

	out := 42.0
	c.Assert(lookupInto(s.layer, h, []byte{}, &out), check.Equals, true)
	c.Assert(out, check.Equals, 0.5)
}

func (s *SurfaceTestSuite) TestLookupAfterDestroy(c *check.C) {
	h := s.layer.CreateTermFreqs()
	s.layer.InsertTermFreqs(h, []byte("ip"), 1)
	s.layer.DestroyTermFreqs(h)

	out := 42.0
	c.Assert(lookupInto(s.layer, h, []byte("ip"), &out), check.Equals, false)
	c.Assert(out, check.Equals, 42.0)
}
