//go:build !consul

package discovery

import "log"

// Enabled returns false when the consul build tag is not present.
func Enabled() bool { return false }

// ResolveBaseURL is a no-op without the consul tag; the configured URL wins.
func ResolveBaseURL(addr, _, service string) (string, error) {
	log.Printf("consul discovery requested (addr=%s service=%s) but consul build tag not enabled; using configured URL", addr, service)
	return "", nil
}
