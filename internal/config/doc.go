// Package config provides YAML configuration loading and validation
// for the audio bridge. Both endpoints must agree out-of-band on the
// channel count and chunk size; validation enforces the parameter
// ranges the wire format and UDP transport can actually carry.
package config
