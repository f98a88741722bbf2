package exmdb

import (
	"fmt"

	"github.com/migadu/exmdb/config"
)

// OptionsFromConfig converts the [exmdb] configuration section into dial
// options.
func OptionsFromConfig(cfg config.ExmdbConfig) (Options, error) {
	port, err := cfg.GetPort()
	if err != nil {
		return Options{}, err
	}
	maxReply, err := cfg.GetMaxReplySize()
	if err != nil {
		return Options{}, err
	}
	if maxReply < 0 || maxReply > 0xFFFFFFFF {
		return Options{}, fmt.Errorf("max_reply_size %d out of range", maxReply)
	}
	return Options{
		Host:         cfg.Host,
		Port:         port,
		Prefix:       cfg.Prefix,
		Private:      cfg.Private,
		RemoteID:     cfg.RemoteID,
		DialTimeout:  cfg.GetDialTimeoutWithDefault(),
		IOTimeout:    cfg.GetIOTimeoutWithDefault(),
		MaxReplySize: uint32(maxReply),
	}, nil
}
