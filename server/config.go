package server

import (
	"os"
	"strconv"

	"git.sr.ht/~emersion/go-scfg"
	"github.com/pkg/errors"
)

// OperCredential is one configured operator account.
type OperCredential struct {
	Name         string
	PasswordHash string // bcrypt hash, produced by cmd/ircpasswd
}

// Config is the server's startup configuration, read from an scfg file.
// It replaces config.go's flat github.com/horgh/config key=value reader
// (see DESIGN.md) with a structured grammar able to express nested
// listener and operator blocks:
//
//	server-name irc.example.org
//	network Example
//	motd-file /etc/ircd/motd.txt
//
//	listen 0.0.0.0:6667 {
//		proxy-protocol false
//	}
//
//	oper admin {
//		password-hash $2a$10$...
//	}
//
//	dcc-ports 50000 50100
type Config struct {
	ServerName string
	Network    string
	MOTDFile   string
	Listeners  []ListenerConfig
	Opers      []OperCredential
	DCCPortLo  int
	DCCPortHi  int
	PingEvery  int // seconds
	IdleTimeout int // seconds
}

// ListenerConfig is one "listen" block.
type ListenerConfig struct {
	Address       string
	ProxyProtocol bool
}

// LoadConfig reads and validates an scfg-formatted configuration file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer func() { _ = f.Close() }()

	block, err := scfg.Read(f)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	cfg := &Config{
		PingEvery:   60,
		IdleTimeout: 300,
	}

	for _, dir := range block {
		switch dir.Name {
		case "server-name":
			cfg.ServerName = param(dir, 0)
		case "network":
			cfg.Network = param(dir, 0)
		case "motd-file":
			cfg.MOTDFile = param(dir, 0)
		case "ping-every":
			cfg.PingEvery = atoiParam(dir, 0)
		case "idle-timeout":
			cfg.IdleTimeout = atoiParam(dir, 0)
		case "dcc-ports":
			cfg.DCCPortLo = atoiParam(dir, 0)
			cfg.DCCPortHi = atoiParam(dir, 1)
		case "listen":
			lc := ListenerConfig{Address: param(dir, 0)}
			for _, child := range dir.Children {
				if child.Name == "proxy-protocol" {
					lc.ProxyProtocol = param(child, 0) == "true"
				}
			}
			cfg.Listeners = append(cfg.Listeners, lc)
		case "oper":
			oc := OperCredential{Name: param(dir, 0)}
			for _, child := range dir.Children {
				if child.Name == "password-hash" {
					oc.PasswordHash = param(child, 0)
				}
			}
			cfg.Opers = append(cfg.Opers, oc)
		}
	}

	if cfg.ServerName == "" {
		return nil, errors.New("config: server-name is required")
	}
	if len(cfg.Listeners) == 0 {
		return nil, errors.New("config: at least one listen block is required")
	}

	return cfg, nil
}

func param(dir *scfg.Directive, i int) string {
	if i >= len(dir.Params) {
		return ""
	}
	return dir.Params[i]
}

func atoiParam(dir *scfg.Directive, i int) int {
	n, _ := strconv.Atoi(param(dir, i))
	return n
}
