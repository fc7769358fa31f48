package binlog

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	perrors "github.com/pkg/errors"
	"github.com/siddontang/go-mysql/replication"
)

// Config of the source MySQL server.
type Config struct {
	// Host of MySQL server.
	Host string `json:"host" yaml:"host"`

	// Port of MySQL server.
	Port uint16 `json:"port" yaml:"port"`

	// User for connection.
	User string `json:"user" yaml:"user"`

	// Password for connection.
	Password string `json:"password" yaml:"password"`

	// Charset for connecting. Default "utf8mb4".
	Charset string `json:"charset,omitempty" yaml:"charset,omitempty"`

	// ServerId of this replication node.
	ServerId uint32 `json:"serverId" yaml:"serverId"`
}

// ToDriverCfg converts cfg to mysql driver config.
func (cfg *Config) ToDriverCfg() *mysql.Config {
	ret := mysql.NewConfig()
	ret.Net = "tcp"
	ret.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	ret.User = cfg.User
	ret.Passwd = cfg.Password
	ret.ParseTime = true
	if ret.Params == nil {
		ret.Params = map[string]string{}
	}
	ret.Params["charset"] = cfg.getCharset()
	return ret
}

// ToBinlogSyncerCfg converts cfg to binlog syncer config. Needs ServerId.
//
// Decimal columns are decoded as decimal.Decimal (UseDecimal) so that no digit is lost
// before conversion.
func (cfg *Config) ToBinlogSyncerCfg() (replication.BinlogSyncerConfig, error) {
	if cfg.ServerId == 0 {
		return replication.BinlogSyncerConfig{}, perrors.New("ToBinlogSyncerCfg: no ServerId")
	}
	return replication.BinlogSyncerConfig{
		ServerID:   cfg.ServerId,
		Host:       cfg.Host,
		Port:       cfg.Port,
		User:       cfg.User,
		Password:   cfg.Password,
		Charset:    cfg.getCharset(),
		ParseTime:  true,
		UseDecimal: true,
	}, nil
}

// Client opens mysql db.
func (cfg *Config) Client() (*sql.DB, error) {
	return sql.Open("mysql", cfg.ToDriverCfg().FormatDSN())
}

func (cfg *Config) getCharset() string {
	if cfg.Charset != "" {
		return cfg.Charset
	}
	return "utf8mb4"
}
