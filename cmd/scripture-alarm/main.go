package main

import "github.com/covertcloak/scripture-alarm/cmd/scripture-alarm/cmd"

func main() {
	cmd.Execute()
}
