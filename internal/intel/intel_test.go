package intel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/withdrawal-risk-service/internal/config"
)

func TestCIDRClassifier(t *testing.T) {
	c, err := NewCIDRClassifier(
		[]string{"185.220.100.0/22"},
		[]string{"10.8.0.0/16", "185.220.0.0/16"},
	)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name       string
		ip         string
		highRisk   bool
		mediumRisk bool
	}{
		{"exit node", "185.220.101.4", true, false},
		{"vpn range", "10.8.3.7", false, true},
		{"high wins over overlapping medium", "185.220.100.1", true, false},
		{"medium outside high subrange", "185.220.200.1", false, true},
		{"clean", "8.8.8.8", false, false},
		{"ipv4-mapped ipv6", "::ffff:185.220.101.4", true, false},
		{"garbage", "not-an-ip", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ClassifyIP(ctx, tt.ip)
			require.NoError(t, err)
			assert.Equal(t, tt.highRisk, got.HighRisk)
			assert.Equal(t, tt.mediumRisk, got.MediumRisk)
			if tt.highRisk || tt.mediumRisk {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestCIDRClassifierRejectsBadRanges(t *testing.T) {
	_, err := NewCIDRClassifier([]string{"300.0.0.0/8"}, nil)
	assert.Error(t, err)

	_, err = NewCIDRClassifier(nil, []string{"10.0.0.1"})
	assert.Error(t, err)
}

func TestCIDRClassifierAddHighRisk(t *testing.T) {
	c, err := NewCIDRClassifier(nil, nil)
	require.NoError(t, err)

	require.NoError(t, c.AddHighRisk("203.0.113.0/24"))
	got, err := c.ClassifyIP(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, got.HighRisk)
}

func TestStaticSignals(t *testing.T) {
	s := NewStaticSignals(config.RiskConfig{
		HighMarketVolatility: true,
		CongestedChains:      []int64{1},
	})
	ctx := context.Background()

	market, err := s.GetMarketConditions(ctx)
	require.NoError(t, err)
	assert.True(t, market.HighVolatility)

	eth, err := s.GetNetworkStatus(ctx, 1)
	require.NoError(t, err)
	assert.True(t, eth.Congested)

	polygon, err := s.GetNetworkStatus(ctx, 137)
	require.NoError(t, err)
	assert.False(t, polygon.Congested)

	s.SetHighVolatility(false)
	s.SetCongested(1, false)
	s.SetCongested(137, true)

	market, _ = s.GetMarketConditions(ctx)
	assert.False(t, market.HighVolatility)
	eth, _ = s.GetNetworkStatus(ctx, 1)
	assert.False(t, eth.Congested)
	polygon, _ = s.GetNetworkStatus(ctx, 137)
	assert.True(t, polygon.Congested)
}
