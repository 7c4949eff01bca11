package tfstore_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	check "gopkg.in/check.v1"

	"github.com/mycok/rfcFreq/tfstore"
)

var _ = check.Suite(new(registryTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type registryTestSuite struct {
	reg  *tfstore.Registry
	hook *test.Hook
}

func (s *registryTestSuite) SetUpTest(c *check.C) {
	logger, hook := test.NewNullLogger()

	s.reg = tfstore.NewRegistry(logrus.NewEntry(logger))
	s.hook = hook
}

func (s *registryTestSuite) TestInsertThenLookup(c *check.C) {
	h := s.reg.Create()
	c.Assert(h, check.Not(check.Equals), tfstore.NullHandle)

	for i, key := range []string{"protocol", "", "über", "日本語", "with space"} {
		value := float64(i) + 0.25
		c.Assert(s.reg.Insert(h, []byte(key), value), check.IsNil)

		got, err := s.reg.Lookup(h, []byte(key))
		c.Assert(err, check.IsNil)
		c.Assert(got, check.NotNil, check.Commentf("key %q", key))
		c.Assert(*got, check.Equals, value)
	}
}

func (s *registryTestSuite) TestInsertOverwrites(c *check.C) {
	h := s.reg.Create()
	key := []byte("host")

	c.Assert(s.reg.Insert(h, key, 1.5), check.IsNil)
	first, err := s.reg.Lookup(h, key)
	c.Assert(err, check.IsNil)

	c.Assert(s.reg.Insert(h, key, 2.5), check.IsNil)
	second, err := s.reg.Lookup(h, key)
	c.Assert(err, check.IsNil)

	c.Assert(*second, check.Equals, 2.5)
	// Earlier lookups hold a copy that is not affected by later writes.
	c.Assert(*first, check.Equals, 1.5)
}

func (s *registryTestSuite) TestLookupOnFreshHandle(c *check.C) {
	h := s.reg.Create()

	for _, key := range []string{"", "a", "missing", "0001"} {
		got, err := s.reg.Lookup(h, []byte(key))
		c.Assert(err, check.IsNil)
		c.Assert(got, check.IsNil)
	}
}

func (s *registryTestSuite) TestHandlesAreIndependent(c *check.C) {
	a, b := s.reg.Create(), s.reg.Create()
	c.Assert(a, check.Not(check.Equals), b)

	c.Assert(s.reg.Insert(a, []byte("term"), 1), check.IsNil)

	got, err := s.reg.Lookup(b, []byte("term"))
	c.Assert(err, check.IsNil)
	c.Assert(got, check.IsNil)
}

func (s *registryTestSuite) TestNullInputs(c *check.C) {
	h := s.reg.Create()

	c.Assert(errors.Is(s.reg.Insert(tfstore.NullHandle, []byte("k"), 1), tfstore.ErrNullHandle), check.Equals, true)
	c.Assert(errors.Is(s.reg.Insert(h, nil, 1), tfstore.ErrNullKey), check.Equals, true)

	_, err := s.reg.Lookup(tfstore.NullHandle, []byte("k"))
	c.Assert(errors.Is(err, tfstore.ErrNullHandle), check.Equals, true)

	_, err = s.reg.Lookup(h, nil)
	c.Assert(errors.Is(err, tfstore.ErrNullKey), check.Equals, true)

	c.Assert(s.reg.Stats(), check.Equals, tfstore.Stats{LiveHandles: 1, Terms: 0})
}

func (s *registryTestSuite) TestInvalidUTF8IsLoggedAndDiscarded(c *check.C) {
	h := s.reg.Create()
	bad := []byte{'k', 0xff, 0xfe}

	err := s.reg.Insert(h, bad, 1)
	c.Assert(errors.Is(err, tfstore.ErrInvalidUTF8), check.Equals, true)

	c.Assert(s.hook.Entries, check.HasLen, 1)
	c.Assert(s.hook.LastEntry().Level, check.Equals, logrus.ErrorLevel)
	c.Assert(s.hook.LastEntry().Message, check.Equals, "unable to convert key to UTF-8")

	_, err = s.reg.Lookup(h, bad)
	c.Assert(errors.Is(err, tfstore.ErrInvalidUTF8), check.Equals, true)

	store, err := s.reg.Store(h)
	c.Assert(err, check.IsNil)
	c.Assert(store.Len(), check.Equals, 0)
}

func (s *registryTestSuite) TestDestroy(c *check.C) {
	h := s.reg.Create()
	c.Assert(s.reg.Insert(h, []byte("k"), 1), check.IsNil)
	c.Assert(s.reg.Destroy(h), check.IsNil)

	c.Assert(errors.Is(s.reg.Insert(h, []byte("k"), 2), tfstore.ErrUnknownHandle), check.Equals, true)

	_, err := s.reg.Lookup(h, []byte("k"))
	c.Assert(errors.Is(err, tfstore.ErrUnknownHandle), check.Equals, true)

	c.Assert(errors.Is(s.reg.Destroy(h), tfstore.ErrUnknownHandle), check.Equals, true)
	c.Assert(errors.Is(s.reg.Destroy(tfstore.NullHandle), tfstore.ErrNullHandle), check.Equals, true)

	// A new store never reuses the destroyed handle.
	c.Assert(s.reg.Create(), check.Not(check.Equals), h)
}

func (s *registryTestSuite) TestUnknownHandle(c *check.C) {
	_, err := s.reg.Lookup(tfstore.Handle(42), []byte("k"))
	c.Assert(errors.Is(err, tfstore.ErrUnknownHandle), check.Equals, true)
}

func (s *registryTestSuite) TestStats(c *check.C) {
	a, b := s.reg.Create(), s.reg.Create()

	for i := 0; i < 3; i++ {
		c.Assert(s.reg.Insert(a, []byte(fmt.Sprint("a", i)), 1), check.IsNil)
	}
	c.Assert(s.reg.Insert(b, []byte("b"), 1), check.IsNil)
	c.Assert(s.reg.Insert(b, []byte("b"), 2), check.IsNil)

	c.Assert(s.reg.Stats(), check.Equals, tfstore.Stats{LiveHandles: 2, Terms: 4})

	c.Assert(s.reg.Destroy(a), check.IsNil)
	c.Assert(s.reg.Stats(), check.Equals, tfstore.Stats{LiveHandles: 1, Terms: 1})
}

func (s *registryTestSuite) TestStoreInsertAll(c *check.C) {
	h := s.reg.Create()
	store, err := s.reg.Store(h)
	c.Assert(err, check.IsNil)

	store.InsertAll(map[string]float64{"a": 0.5, "b": 0.25})

	got, err := s.reg.Lookup(h, []byte("b"))
	c.Assert(err, check.IsNil)
	c.Assert(*got, check.Equals, 0.25)
	c.Assert(store.Len(), check.Equals, 2)
}

func (s *registryTestSuite) TestNilLoggerIsAccepted(c *check.C) {
	reg := tfstore.NewRegistry(nil)
	h := reg.Create()

	c.Assert(errors.Is(reg.Insert(h, []byte{0xff}, 1), tfstore.ErrInvalidUTF8), check.Equals, true)
}
