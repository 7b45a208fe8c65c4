package main

import "github.com/philipparndt/bambu3mf/internal/cmd"

func main() {
	cmd.Parse()
}
