// Package main provides the activities CLI.
package main

import "github.com/mesh-intelligence/activities/internal/cli"

func main() {
	cli.Execute()
}
