package ceph

import (
	"fmt"

	"github.com/journeymidnight/radoshttpd/rados"
)

const (
	STRIPE_UNIT  = 4 << 20 /* 4M */
	STRIPE_COUNT = 1
	OBJECT_SIZE  = 4 << 20 /* 4M */
)

// Cluster is a connection to the local Ceph cluster
type Cluster struct {
	Name       string
	Conn       RadosConn
	InstanceId uint64
}

func NewCluster(configFile, monTimeout, osdTimeout string) (*Cluster, error) {
	conn, err := rados.NewConn("admin")
	if err != nil {
		return nil, fmt.Errorf("rados new conn: %v", err)
	}
	err = conn.SetConfigOption("rados_mon_op_timeout", monTimeout)
	if err != nil {
		return nil, fmt.Errorf("set rados_mon_op_timeout: %v", err)
	}
	err = conn.SetConfigOption("rados_osd_op_timeout", osdTimeout)
	if err != nil {
		return nil, fmt.Errorf("set rados_osd_op_timeout: %v", err)
	}

	err = conn.ReadConfigFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("open %s failed: %v", configFile, err)
	}

	err = conn.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to cluster %s failed: %v", configFile, err)
	}

	name, err := conn.GetFSID()
	if err != nil {
		conn.Shutdown()
		return nil, fmt.Errorf("get %s FSID failed: %v", configFile, err)
	}

	return &Cluster{
		Name:       name,
		Conn:       radosConn{conn},
		InstanceId: conn.GetInstanceID(),
	}, nil
}

func setStripeLayout(p StriperPool) int {
	var ret int = 0
	if ret = p.SetLayoutStripeUnit(STRIPE_UNIT); ret < 0 {
		return ret
	}
	if ret = p.SetLayoutObjectSize(OBJECT_SIZE); ret < 0 {
		return ret
	}
	if ret = p.SetLayoutStripeCount(STRIPE_COUNT); ret < 0 {
		return ret
	}
	return ret
}

// UsedSpacePercent reports cluster fullness as a percentage of capacity
func (cluster *Cluster) UsedSpacePercent() (int, error) {
	stat, err := cluster.Conn.GetClusterStats()
	if err != nil {
		return 0, err
	}
	return int(stat.Kb_used * uint64(100) / stat.Kb), nil
}

func (cluster *Cluster) Shutdown() {
	cluster.Conn.Shutdown()
}
