package capability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestUnofferedCapabilityIsWhollyNaked(t *testing.T) {
	r := NewRegistry()
	r.Offer(map[string]string{MessageTags: ""})
	ok, acked, nacked := r.Request([]string{MessageTags, "sasl"})
	require.False(t, ok)
	require.Nil(t, acked)
	require.Equal(t, []string{MessageTags, "sasl"}, nacked)
	require.False(t, r.Has(MessageTags))
}

func TestRequestAllOfferedIsAcked(t *testing.T) {
	r := NewRegistry()
	r.Offer(map[string]string{MessageTags: "", ServerTime: ""})
	ok, acked, _ := r.Request([]string{MessageTags, ServerTime})
	require.True(t, ok)
	require.ElementsMatch(t, []string{MessageTags, ServerTime}, acked)
	require.True(t, r.Has(MessageTags))
	require.True(t, r.Has(ServerTime))
}

func TestNegotiatingBlocksUntilEnd(t *testing.T) {
	r := NewRegistry()
	require.False(t, r.IsNegotiating())
	r.Offer(map[string]string{MessageTags: ""})
	require.True(t, r.IsNegotiating())
	r.End()
	require.False(t, r.IsNegotiating())
}

func TestDelDisablesCapability(t *testing.T) {
	r := NewRegistry()
	r.Offer(map[string]string{AwayNotify: ""})
	r.Request([]string{AwayNotify})
	require.True(t, r.Has(AwayNotify))
	r.Del([]string{AwayNotify})
	require.False(t, r.Has(AwayNotify))
}

func TestKnownCapabilities(t *testing.T) {
	require.True(t, Known(CapNotify))
	require.False(t, Known("sasl"))
}
