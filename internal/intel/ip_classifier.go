// Package intel provides IP reputation and market/network signals.
package intel

import (
	"context"
	"fmt"
	"net/netip"
	"sync"

	"github.com/banking/withdrawal-risk-service/internal/domain"
)

// CIDRClassifier rates IPs by membership in configured network ranges.
// High-risk ranges (e.g. anonymising exit nodes) win over medium-risk ones
// (e.g. VPN or proxy providers).
type CIDRClassifier struct {
	mu     sync.RWMutex
	high   []netip.Prefix
	medium []netip.Prefix
}

// NewCIDRClassifier parses the given CIDR lists
func NewCIDRClassifier(highRisk, mediumRisk []string) (*CIDRClassifier, error) {
	high, err := parsePrefixes(highRisk)
	if err != nil {
		return nil, fmt.Errorf("high risk ranges: %w", err)
	}
	medium, err := parsePrefixes(mediumRisk)
	if err != nil {
		return nil, fmt.Errorf("medium risk ranges: %w", err)
	}
	return &CIDRClassifier{high: high, medium: medium}, nil
}

// ClassifyIP rates ip. Unparseable addresses are reported as not risky.
func (c *CIDRClassifier) ClassifyIP(_ context.Context, ip string) (*domain.IPClassification, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return &domain.IPClassification{}, nil
	}
	addr = addr.Unmap()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if p, ok := containing(c.high, addr); ok {
		return &domain.IPClassification{HighRisk: true, Reason: "anonymizing network " + p.String()}, nil
	}
	if p, ok := containing(c.medium, addr); ok {
		return &domain.IPClassification{MediumRisk: true, Reason: "vpn or proxy range " + p.String()}, nil
	}
	return &domain.IPClassification{}, nil
}

// AddHighRisk registers an extra high-risk range at runtime
func (c *CIDRClassifier) AddHighRisk(cidr string) error {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.high = append(c.high, p.Masked())
	c.mu.Unlock()
	return nil
}

func parsePrefixes(cidrs []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, s := range cidrs {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

func containing(prefixes []netip.Prefix, addr netip.Addr) (netip.Prefix, bool) {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return p, true
		}
	}
	return netip.Prefix{}, false
}
