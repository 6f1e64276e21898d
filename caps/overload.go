package caps

import (
	"fmt"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// Rank orders how well a candidate matches a call. Higher is better.
type Rank uint8

const (
	// RankNone marks a non-viable candidate.
	RankNone Rank = iota
	// RankVariadic matches through a variadic catch-all tail.
	RankVariadic
	// RankConversion matches through a registered representation
	// conversion.
	RankConversion
	// RankQualified matches up to qualifiers or one reference level.
	RankQualified
	// RankExact matches the parameter shape exactly.
	RankExact
)

// OverloadSet is an ordered set of callables sharing one name.
type OverloadSet []Callable

// Resolve picks the best candidate for args. Exact-shape matches beat
// qualified-conversion matches, which beat user-defined-conversion
// matches, which beat variadic catch-alls; a candidate's rank is its worst
// argument's rank. A tie among top-ranked candidates is an AmbiguousCall,
// no viable candidate a BadCast.
func (s OverloadSet) Resolve(args []holder.Holder) (Callable, error) {
	var best Callable
	bestRank := RankNone
	ambiguous := false
	for _, c := range s {
		r := c.Rank(args)
		switch {
		case r == RankNone:
		case r > bestRank:
			best, bestRank, ambiguous = c, r, false
		case r == bestRank:
			ambiguous = true
		}
	}
	if bestRank == RankNone {
		return nil, fmt.Errorf("no overload of %d accepts the given arguments: %w", len(s), holder.ErrBadCast)
	}
	if ambiguous {
		return nil, fmt.Errorf("multiple overloads tie at rank %d: %w", bestRank, holder.ErrAmbiguousCall)
	}
	return best, nil
}

// Invoke resolves the best overload for args and calls it.
func (s OverloadSet) Invoke(receiver holder.Holder, args ...holder.Holder) (holder.Holder, error) {
	c, err := s.Resolve(args)
	if err != nil {
		return holder.Empty(), err
	}
	return c.Invoke(receiver, args...)
}

// RankArguments scores args against a parameter list and returns the
// worst per-argument rank. It is the shared scoring used by the callable
// implementations in this module.
func RankArguments(params []*shape.Descriptor, variadic bool, defaultArgs int, args []holder.Holder) Rank {
	fixed := len(params)
	if variadic {
		fixed--
	}
	if len(args) < fixed-defaultArgs {
		return RankNone
	}
	if !variadic && len(args) > fixed {
		return RankNone
	}

	worst := RankExact
	for i, arg := range args {
		var r Rank
		if i < fixed {
			r = RankArgument(arg, params[i])
		} else {
			r = RankVariadic
		}
		if r == RankNone {
			return RankNone
		}
		if r < worst {
			worst = r
		}
	}
	return worst
}

// RankArgument scores a single argument against a parameter shape.
func RankArgument(arg holder.Holder, param *shape.Descriptor) Rank {
	a := arg.Descriptor()
	switch {
	case a == param:
		return RankExact
	case shape.Bare(a) == shape.Bare(param):
		return RankQualified
	case arg.CanGetShape(param):
		return RankQualified
	case arg.CanCast(param):
		return RankConversion
	}
	return RankNone
}
