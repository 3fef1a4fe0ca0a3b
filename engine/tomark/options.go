package tomark

import (
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/tomark/engine/rules"
)

// ConfigKeyGFM is the configuration key for switching GFM output on or off.
const ConfigKeyGFM = "tomark.gfm"

type options struct {
	gfm      bool
	renderer *rules.RuleSet
}

// Option configures a conversion.
type Option func(*options)

// WithGFM switches GitHub-flavoured output on or off. It is on by default.
func WithGFM(on bool) Option {
	return func(o *options) {
		o.gfm = on
	}
}

// WithRenderer sets a custom rule set, taking precedence over the
// built-in ones.
func WithRenderer(rs *rules.RuleSet) Option {
	return func(o *options) {
		o.renderer = rs
	}
}

// FromConfig reads options from a configuration. Keys not set leave the
// defaults untouched.
func FromConfig(conf schuko.Configuration) Option {
	return func(o *options) {
		if conf == nil {
			return
		}
		if conf.IsSet(ConfigKeyGFM) {
			o.gfm = conf.GetBool(ConfigKeyGFM)
		}
	}
}

func makeOptions(opts []Option) *options {
	o := &options{gfm: true}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) rules() *rules.RuleSet {
	if o.renderer != nil {
		return o.renderer
	}
	if o.gfm {
		return GFM
	}
	return Basic
}
