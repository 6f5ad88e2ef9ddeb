package isupport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaseMappingSetOnce(t *testing.T) {
	s := NewStore()
	s.Apply("CASEMAPPING=ascii")
	s.Apply("CASEMAPPING=rfc7613")
	require.Equal(t, "ascii", s.CaseMapping)
}

func TestChanModesGrouping(t *testing.T) {
	s := NewStore()
	s.Apply("CHANMODES=beI,k,l,imnpst")
	g, ok := s.ModeGroup('b')
	require.True(t, ok)
	require.Equal(t, byte('A'), g)

	g, ok = s.ModeGroup('l')
	require.True(t, ok)
	require.Equal(t, byte('C'), g)

	g, ok = s.ModeGroup('o')
	require.True(t, ok)
	require.Equal(t, byte('B'), g)
}

func TestPrefixParsing(t *testing.T) {
	s := NewStore()
	s.Apply("PREFIX=(ov)@+")
	sym, ok := s.PrefixSymbol('o')
	require.True(t, ok)
	require.Equal(t, byte('@'), sym)
	sym, ok = s.PrefixSymbol('v')
	require.True(t, ok)
	require.Equal(t, byte('+'), sym)
}

func TestDisableResetsToDefault(t *testing.T) {
	s := NewStore()
	s.Apply("SAFELIST")
	require.True(t, s.SafeList)
	s.Apply("-SAFELIST")
	require.False(t, s.SafeList)
}

func TestChanLimitParsing(t *testing.T) {
	s := NewStore()
	s.Apply("CHANLIMIT=#&:20")
	require.Equal(t, 20, s.ChanLimit['#'])
	require.Equal(t, 20, s.ChanLimit['&'])
}

func TestTargMaxParsing(t *testing.T) {
	s := NewStore()
	s.Apply("TARGMAX=PRIVMSG:4,NOTICE:,JOIN:")
	require.Equal(t, 4, s.TargMax["PRIVMSG"])
	require.Equal(t, -1, s.TargMax["NOTICE"])
}

func TestTokensRoundTripsParsedValues(t *testing.T) {
	s := NewStore()
	s.Apply("CHANLIMIT=#&:20")
	s.Apply("MAXLIST=b:100")
	s.Apply("EXTBAN=~,qn")
	s.Apply("SILENCE=15")
	s.Apply("TARGMAX=PRIVMSG:4,NOTICE:")

	other := NewStore()
	for _, tok := range s.Tokens() {
		other.Apply(tok)
	}

	require.Equal(t, s.ChanLimit, other.ChanLimit)
	require.Equal(t, s.MaxList, other.MaxList)
	require.Equal(t, s.ExtBan, other.ExtBan)
	require.Equal(t, s.Silence, other.Silence)
	require.Equal(t, s.TargMax, other.TargMax)
}
