package ceph

// IoCtx is a borrowed handle to one local pool. The deletion scheduler keys
// its queues by PoolID; the remove pipeline drives object removal through the
// rest of the interface
type IoCtx interface {
	PoolID() int64
	PoolName() string

	// ReadObject reads up to max bytes of a small object.
	// A missing object surfaces as a rados error with ret=-2
	ReadObject(oid string, max int) ([]byte, error)
	// RemoveObject removes a plain object
	RemoveObject(oid string) error
	// RemoveStripedObject removes a striped object and all its sub objects
	RemoveStripedObject(oid string) error
}

type ioCtx struct {
	cluster  *Cluster
	poolName string
	poolID   int64
}

// OpenIoCtx returns an IoCtx for poolName. poolID is the pool's id in the
// cluster osdmap, as reported by the pool replayer that owns this handle
func (cluster *Cluster) OpenIoCtx(poolName string, poolID int64) IoCtx {
	return &ioCtx{
		cluster:  cluster,
		poolName: poolName,
		poolID:   poolID,
	}
}

func (ctx *ioCtx) PoolID() int64 {
	return ctx.poolID
}

func (ctx *ioCtx) PoolName() string {
	return ctx.poolName
}

func (ctx *ioCtx) ReadObject(oid string, max int) ([]byte, error) {
	pool, err := ctx.cluster.Conn.OpenPool(ctx.poolName)
	if err != nil {
		return nil, err
	}
	defer pool.Destroy()

	data := make([]byte, max)
	count, err := pool.Read(oid, data, 0)
	if err != nil {
		return nil, err
	}
	return data[:count], nil
}

func (ctx *ioCtx) RemoveObject(oid string) error {
	pool, err := ctx.cluster.Conn.OpenPool(ctx.poolName)
	if err != nil {
		return err
	}
	defer pool.Destroy()
	return pool.Delete(oid)
}

func (ctx *ioCtx) RemoveStripedObject(oid string) error {
	pool, err := ctx.cluster.Conn.OpenPool(ctx.poolName)
	if err != nil {
		return err
	}
	defer pool.Destroy()

	striper, err := pool.CreateStriper()
	if err != nil {
		return err
	}
	defer striper.Destroy()
	// without our custom layout rados infers sub object names from the
	// default layout and some sub objects survive the delete
	setStripeLayout(striper)

	return striper.Delete(oid)
}
