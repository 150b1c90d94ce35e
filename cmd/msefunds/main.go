// Package main provides the entry point for the msefunds CLI.
//
// msefunds drives the Macedonian Stock Exchange open-end investment funds
// portal month by month, saves every export and merges them into one
// tab-separated dataset.
//
// Usage:
//
//	msefunds crawl
//	msefunds assemble
//
// See --help for all available options.
package main

func main() {
	Execute()
}
