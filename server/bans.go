package server

import (
	"path/filepath"
	"strings"
)

// Ban is a local KLINE-style ban entry: a user@host glob mask, plus the
// reason reported to a rejected connection. Grounded on local_server.go's
// KLine/addAndApplyKLine, scoped down per SPEC_FULL.md section C to a
// local in-memory list applied only at registration time (no ENCAP
// propagation, since server-to-server linking is out of scope).
type Ban struct {
	UserHostMask string
	Reason       string
}

// BanList is the server's collection of active bans.
type BanList struct {
	bans []Ban
}

// Add installs a new ban (KLINE). If mask is already banned, its reason
// is updated.
func (b *BanList) Add(mask, reason string) {
	for i := range b.bans {
		if b.bans[i].UserHostMask == mask {
			b.bans[i].Reason = reason
			return
		}
	}
	b.bans = append(b.bans, Ban{UserHostMask: mask, Reason: reason})
}

// Remove lifts a ban (UNKLINE). It reports whether a matching ban existed.
func (b *BanList) Remove(mask string) bool {
	for i := range b.bans {
		if b.bans[i].UserHostMask == mask {
			b.bans = append(b.bans[:i], b.bans[i+1:]...)
			return true
		}
	}
	return false
}

// Match returns the reason for the first ban whose mask matches
// user@host, or ok == false if none match.
func (b *BanList) Match(user, host string) (reason string, ok bool) {
	target := user + "@" + host
	for _, ban := range b.bans {
		if globMatch(ban.UserHostMask, target) {
			return ban.Reason, true
		}
	}
	return "", false
}

// All returns a copy of the active ban list, for LINKS/STATS-style
// reporting.
func (b *BanList) All() []Ban {
	out := make([]Ban, len(b.bans))
	copy(out, b.bans)
	return out
}

// globMatch implements IRC's simple glob syntax ('*' and '?') over
// user@host masks, built on filepath.Match's shell-glob semantics since
// '*'/'?' have the same meaning there and no pack example pulls in a
// dedicated IRC mask-matching library.
func globMatch(mask, target string) bool {
	pattern := strings.ReplaceAll(mask, `\`, `\\`)
	ok, err := filepath.Match(pattern, target)
	if err != nil {
		return false
	}
	return ok
}
