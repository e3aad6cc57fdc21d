package main

import "github.com/khanhnv2901/supplywatch/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
