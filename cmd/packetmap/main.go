// Package main provides the entry point for the packetmap CLI.
//
// Packetmap crawls an amateur packet-radio network through the
// operator's own node, interrogating NET/ROM neighbors hop by hop and
// building a map of nodes and links.
//
// Usage:
//
//	packetmap crawl
//	packetmap merge -o combined.json east.json west.json
//	packetmap export --edges -o links.csv packetmap.json
//
// See --help for all available options.
package main

// main is the entry point for packetmap.
func main() {
	Execute()
}
