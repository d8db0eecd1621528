// Package config defines packetmap's configuration: defaults, the
// .packetmap YAML file, and validation. Settings layer in order of
// defaults, config file, CLI flags, with later layers winning.
package config
