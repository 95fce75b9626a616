package helper

import (
	"io/ioutil"

	"github.com/BurntSushi/toml"
)

const (
	MIRROR_CONF_PATH = "/etc/radosmirror/radosmirror.toml"

	// Ceph default for rbd_mirror_delete_retry_interval
	DEFAULT_DELETE_RETRY_INTERVAL = 30.0
)

type Config struct {
	LogPath          string `toml:"log_path"`
	LogLevel         string `toml:"log_level"` // "fatal", "error", "warn", "info", "debug"
	PanicLogPath     string `toml:"panic_log_path"`
	PidFile          string `toml:"pid_file"`
	BindAdminAddress string `toml:"admin_listener"`
	AdminKey         string `toml:"admin_key"` // used for tools/admin to communicate with the daemon
	DebugMode        bool   `toml:"debug_mode"`
	EnablePProf      bool   `toml:"enable_pprof"`
	BindPProfAddress string `toml:"pprof_listener"`

	CephConfigFile  string `toml:"ceph_config_file"`
	RadosMonTimeout string `toml:"rados_mon_op_timeout"`
	RadosOsdTimeout string `toml:"rados_osd_op_timeout"`

	// Seconds to wait before requeueing failed deletions,
	// rbd_mirror_delete_retry_interval upstream
	DeleteRetryInterval float64 `toml:"delete_retry_interval"`
	// Number of threads completion callbacks are dispatched on
	WorkPoolSize int `toml:"work_pool_size"`

	InstanceId string // if empty, generated one at server startup
}

var CONFIG Config

func SetupConfig() {
	MarshalTOMLConfig()
}

func MarshalTOMLConfig() error {
	data, err := ioutil.ReadFile(MIRROR_CONF_PATH)
	if err != nil {
		panic("Cannot open radosmirror.toml")
	}
	var c Config
	_, err = toml.Decode(string(data), &c)
	if err != nil {
		panic("load radosmirror.toml error: " + err.Error())
	}
	// setup CONFIG with defaults
	CONFIG.LogPath = Ternary(c.LogPath == "",
		"/var/log/radosmirror/radosmirror.log", c.LogPath).(string)
	CONFIG.LogLevel = Ternary(len(c.LogLevel) == 0, "info", c.LogLevel).(string)
	CONFIG.PanicLogPath = Ternary(c.PanicLogPath == "",
		"/var/log/radosmirror/panic.log", c.PanicLogPath).(string)
	CONFIG.PidFile = c.PidFile
	CONFIG.BindAdminAddress = Ternary(c.BindAdminAddress == "",
		"0.0.0.0:9091", c.BindAdminAddress).(string)
	CONFIG.AdminKey = c.AdminKey
	CONFIG.DebugMode = c.DebugMode
	CONFIG.EnablePProf = c.EnablePProf
	CONFIG.BindPProfAddress = Ternary(c.BindPProfAddress == "",
		"0.0.0.0:8730", c.BindPProfAddress).(string)

	CONFIG.CephConfigFile = Ternary(c.CephConfigFile == "",
		"/etc/ceph/ceph.conf", c.CephConfigFile).(string)
	CONFIG.RadosMonTimeout = Ternary(c.RadosMonTimeout == "", "10", c.RadosMonTimeout).(string)
	CONFIG.RadosOsdTimeout = Ternary(c.RadosOsdTimeout == "", "10", c.RadosOsdTimeout).(string)

	CONFIG.DeleteRetryInterval = Ternary(c.DeleteRetryInterval <= 0,
		DEFAULT_DELETE_RETRY_INTERVAL, c.DeleteRetryInterval).(float64)
	CONFIG.WorkPoolSize = Ternary(c.WorkPoolSize <= 0, 4, c.WorkPoolSize).(int)

	CONFIG.InstanceId = Ternary(c.InstanceId == "",
		string(GenerateRandomId()), c.InstanceId).(string)
	return nil
}
