package ircmsg

import "strings"

// reader walks a command's raw parameter list left to right. Each
// extractor below consumes zero or more positions and reports whether the
// extraction succeeded, so a command builder can compose a declarative
// plan instead of hand-indexing Params: required fields short-circuit to
// NotEnoughParameters, optional ones fall back to a zero value, and the
// greedy/split/conditional/discard/hoist helpers cover the handful of
// irregular shapes real commands need (trailing free text, comma lists,
// predicate-gated fields, and RPL_NAMREPLY's nick-before-channel order).
type reader struct {
	params []string
	pos    int
}

func newReader(params []string) *reader {
	return &reader{params: params}
}

func (r *reader) left() int {
	return len(r.params) - r.pos
}

// required consumes exactly one parameter, failing if none remain.
func (r *reader) required() (string, bool) {
	if r.left() <= 0 {
		return "", false
	}
	v := r.params[r.pos]
	r.pos++
	return v, true
}

// optional consumes exactly one parameter if present, otherwise reports
// ok == false without failing the overall plan.
func (r *reader) optional() (string, bool) {
	if r.left() <= 0 {
		return "", false
	}
	v := r.params[r.pos]
	r.pos++
	return v, true
}

// greedyRequired consumes every remaining parameter, joined with single
// spaces, failing if nothing remains. Used (through greedyOptional) for
// commands whose free-text tail wasn't necessarily sent as a single
// trailing parameter (e.g. a PART or KICK reason).
func (r *reader) greedyRequired() (string, bool) {
	if r.left() <= 0 {
		return "", false
	}
	v := strings.Join(r.params[r.pos:], " ")
	r.pos = len(r.params)
	return v, true
}

// greedyOptional is greedyRequired without the failure case.
func (r *reader) greedyOptional() string {
	v, _ := r.greedyRequired()
	return v
}

// greedyRequiredSlice consumes every remaining parameter as a slice
// instead of joining it, failing if nothing remains.
func (r *reader) greedyRequiredSlice() ([]string, bool) {
	if r.left() <= 0 {
		return nil, false
	}
	v := r.params[r.pos:]
	r.pos = len(r.params)
	return v, true
}

// splitRequired consumes exactly one parameter and splits it on sep,
// failing if no parameter remains. Used for comma-joined lists such as
// JOIN's channel and key lists.
func (r *reader) splitRequired(sep string) ([]string, bool) {
	v, ok := r.required()
	if !ok {
		return nil, false
	}
	return strings.Split(v, sep), true
}

// conditional consumes one parameter only if it satisfies pred, otherwise
// leaves the cursor untouched and reports ok == false.
func (r *reader) conditional(pred func(string) bool) (string, bool) {
	if r.left() <= 0 {
		return "", false
	}
	v := r.params[r.pos]
	if !pred(v) {
		return "", false
	}
	r.pos++
	return v, true
}

// discard drops exactly one parameter without returning it, used for
// positions a command needs to step over but never needs the value of.
func (r *reader) discard() {
	if r.left() > 0 {
		r.pos++
	}
}

// hoist pulls the LAST remaining parameter out of order, for commands
// whose last field is extracted before the positional fields ahead of it
// are consumed (RPL_ISUPPORT's trailing text, which sits after a variable
// number of tokens, and WHOIS, whose nick is always the last parameter).
func (r *reader) hoist() (string, bool) {
	if r.left() <= 0 {
		return "", false
	}
	last := len(r.params) - 1
	v := r.params[last]
	r.params = append(r.params[:last:last], r.params[last+1:]...)
	return v, true
}
