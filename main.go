package main

import "github.com/gaurav-prasanna/htmd/cmd"

func main() {
	cmd.Execute()
}
