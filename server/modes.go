package server

import "github.com/tsavola/ircd/isupport"

// ModeChange is one applied mode flag change, used to build the MODE line
// echoed back to the channel. Changes are applied as they are parsed;
// nothing undoes earlier changes of the same MODE command.
type ModeChange struct {
	Add      bool
	Mode     byte
	Argument string
}

// applyChannelModes classifies and applies each character of modestring
// against the channel, consuming arguments from args as each mode group
// requires (per isupport.Store's A/B/C/D classification). An
// unrecognized mode character is logged and skipped rather than aborting
// the whole command, matching local_user.go's loose channelModeCommand
// parsing (see DESIGN.md's Open Question ledger); unknownChar is true if
// any character was skipped this way.
func applyChannelModes(ch *Channel, store *isupport.Store, modestring string, args []string) (changes []ModeChange, unknownChar bool) {
	add := true
	argi := 0
	nextArg := func() (string, bool) {
		if argi >= len(args) {
			return "", false
		}
		v := args[argi]
		argi++
		return v, true
	}

	for i := 0; i < len(modestring); i++ {
		c := modestring[i]
		switch c {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}

		group, ok := store.ModeGroup(c)
		if !ok {
			if _, isPrefix := store.PrefixSymbol(c); !isPrefix {
				unknownChar = true
				continue
			}
			group = 'B'
		}

		switch group {
		case 'A':
			mask, ok := nextArg()
			if !ok {
				continue
			}
			if add {
				ch.Lists[c] = appendUnique(ch.Lists[c], mask)
			} else {
				ch.Lists[c] = removeString(ch.Lists[c], mask)
			}
			changes = append(changes, ModeChange{Add: add, Mode: c, Argument: mask})
		case 'B':
			arg, ok := nextArg()
			if !ok {
				continue
			}
			if isMembershipMode(store, c) {
				member, exists := ch.Members[canonical(arg)]
				if !exists {
					continue
				}
				if member.Modes == nil {
					member.Modes = map[byte]bool{}
				}
				member.Modes[c] = add
			} else if c == 'k' {
				if add {
					ch.Key = arg
				} else {
					ch.Key = ""
				}
			}
			changes = append(changes, ModeChange{Add: add, Mode: c, Argument: arg})
		case 'C':
			if add {
				arg, ok := nextArg()
				if !ok {
					continue
				}
				if c == 'l' {
					n := 0
					for _, digit := range arg {
						if digit < '0' || digit > '9' {
							n = 0
							break
						}
						n = n*10 + int(digit-'0')
					}
					ch.Limit = n
				}
				changes = append(changes, ModeChange{Add: true, Mode: c, Argument: arg})
			} else {
				if c == 'l' {
					ch.Limit = 0
				}
				changes = append(changes, ModeChange{Add: false, Mode: c})
			}
		case 'D':
			if ch.Modes == nil {
				ch.Modes = map[byte]bool{}
			}
			ch.Modes[c] = add
			changes = append(changes, ModeChange{Add: add, Mode: c})
		}
	}

	return changes, unknownChar
}

func isMembershipMode(store *isupport.Store, c byte) bool {
	_, ok := store.PrefixSymbol(c)
	return ok
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}

// modestringFor renders changes back to a "+ov-b"-style mode string plus
// its argument list, for echoing a MODE command to a channel.
func modestringFor(changes []ModeChange) (string, []string) {
	var out []byte
	var args []string
	lastAdd := true
	first := true
	for _, c := range changes {
		if first || c.Add != lastAdd {
			if c.Add {
				out = append(out, '+')
			} else {
				out = append(out, '-')
			}
			lastAdd = c.Add
			first = false
		}
		out = append(out, c.Mode)
		if c.Argument != "" {
			args = append(args, c.Argument)
		}
	}
	return string(out), args
}
