package main

import "github.com/quocvuong92/monaca-cli/cmd"

func main() {
	cmd.Execute()
}
