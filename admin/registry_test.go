package admin

import (
	"bytes"
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type RegistrySuite struct{}

var _ = Suite(&RegistrySuite{})

func (s *RegistrySuite) TestRegisterAndDispatch(c *C) {
	r := NewRegistry()
	err := r.Register("rbd mirror deletion status", "get status for image deleter",
		HookFunc(func(format string, out *bytes.Buffer) bool {
			out.WriteString("status:" + format)
			return true
		}))
	c.Assert(err, IsNil)

	var out bytes.Buffer
	ok, err := r.Dispatch("rbd mirror deletion status", "json", &out)
	c.Assert(err, IsNil)
	c.Assert(ok, Equals, true)
	c.Assert(out.String(), Equals, "status:json")

	c.Assert(r.Commands(), DeepEquals, []string{"rbd mirror deletion status"})
	c.Assert(r.Description("rbd mirror deletion status"),
		Equals, "get status for image deleter")
}

func (s *RegistrySuite) TestDoubleRegistrationRefused(c *C) {
	r := NewRegistry()
	hook := HookFunc(func(format string, out *bytes.Buffer) bool { return true })
	c.Assert(r.Register("cmd", "", hook), IsNil)
	c.Assert(r.Register("cmd", "", hook), NotNil)
}

func (s *RegistrySuite) TestUnregisterAllowsReRegistration(c *C) {
	r := NewRegistry()
	hook := HookFunc(func(format string, out *bytes.Buffer) bool { return true })
	c.Assert(r.Register("cmd", "", hook), IsNil)
	r.Unregister("cmd")
	c.Assert(r.Register("cmd", "", hook), IsNil)
}

func (s *RegistrySuite) TestDispatchUnknownCommand(c *C) {
	r := NewRegistry()
	var out bytes.Buffer
	_, err := r.Dispatch("nope", "", &out)
	c.Assert(err, NotNil)
	c.Assert(out.Len(), Equals, 0)
}
