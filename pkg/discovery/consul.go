//go:build consul

package discovery

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// Enabled returns true when the consul tag is on.
func Enabled() bool { return true }

// ResolveBaseURL looks the inventory backend up in the Consul health catalog
// and returns the first passing instance as an http base URL.
func ResolveBaseURL(addr, token, service string) (string, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	if token != "" {
		cfg.Token = token
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return "", err
	}
	entries, _, err := cli.Health().Service(service, "", true, nil)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no healthy %q instances in consul", service)
	}
	svc := entries[0].Service
	host := svc.Address
	if host == "" {
		host = entries[0].Node.Address
	}
	return fmt.Sprintf("http://%s:%d", host, svc.Port), nil
}
