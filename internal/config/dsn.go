package config

import (
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// FormatDSN builds a go-sql-driver DSN from the structured database section.
func (c DatabaseConfig) FormatDSN(tz string) string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.User = c.User
	mc.Passwd = c.Password
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			mc.Loc = loc
		}
	}

	mc.Params = map[string]string{"charset": defaultDBCharset}
	for k, v := range c.Params {
		if k != "" && v != "" {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}
