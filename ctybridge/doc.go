// Package ctybridge connects the shape world to the cty dynamic type
// system. It maps cty types onto shape descriptors, converts cty values
// to and from holders, and registers a conversion hook so casts cross
// the boundary like any other registered conversion. Holders of
// cty.Value additionally gain keyed, indexed, and enumerable access over
// cty collections.
package ctybridge
