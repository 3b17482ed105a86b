/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package main

import "github.com/akadevbarki76-collab/scaling-parakeet/cmd"

func main() {
	cmd.Execute()
}
