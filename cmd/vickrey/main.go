package main

import "github.com/kurumiimari/vickrey/cmd/vickrey/cmd"

func main() {
	cmd.Execute()
}
