package main

import "github.com/open-simulation-platform/cosimpkg/cmd/cosimpkg/internal"

func main() {
	internal.Execute()
}
