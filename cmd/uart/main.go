package main

import "github.com/OpenTraceLab/OpenTraceUART/cmd/uart/cmd"

func main() {
	cmd.Execute()
}
