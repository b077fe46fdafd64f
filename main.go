package main

import "github.com/ddaumiller/psa-update/cmd"

func main() {
	cmd.Execute()
}
