package ceph

import (
	"regexp"
	"strconv"

	"github.com/journeymidnight/radoshttpd/rados"
)

// Interfaces for underlying rados lib, mainly to ease testing/mocking

type RadosConn interface {
	OpenPool(name string) (Pool, error)
	GetClusterStats() (rados.ClusterStat, error)
	Shutdown()
}

type Pool interface {
	Write(oid string, data []byte, offset uint64) error
	Read(oid string, data []byte, offset uint64) (int, error)
	Delete(oid string) error
	Destroy()
	CreateStriper() (StriperPool, error)
	WriteSmallObject(oid string, data []byte) error
}

type StriperPool interface {
	Delete(oid string) error
	Destroy()
	SetLayoutStripeUnit(unit uint) int
	SetLayoutStripeCount(count uint) int
	SetLayoutObjectSize(size uint) int
}

type radosConn struct {
	*rados.Conn
}

func (c radosConn) OpenPool(name string) (Pool, error) {
	p, err := c.Conn.OpenPool(name)
	if err != nil {
		return nil, err
	}
	return pool{p}, nil
}

type pool struct {
	*rados.Pool
}

func (p pool) CreateStriper() (StriperPool, error) {
	s, err := p.Pool.CreateStriper()
	if err != nil {
		return nil, err
	}
	return striperPool{&s}, nil
}

type striperPool struct {
	*rados.StriperPool
}

// rados lib reports errnos as "ret=-N" inside error strings
var radosRetPattern = regexp.MustCompile(`ret=(-\d+)`)

// ErrnoFromError extracts the negative errno carried by a rados error.
// Returns 0 when the error carries none
func ErrnoFromError(err error) int {
	if err == nil {
		return 0
	}
	m := radosRetPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, e := strconv.Atoi(m[1])
	if e != nil {
		return 0
	}
	return n
}
