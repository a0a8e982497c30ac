// Package buildinfo carries version metadata stamped at link time:
//
//	go build -ldflags "-X influxinv/internal/buildinfo.Version=v1.2.3"
package buildinfo

var Version = "dev"
