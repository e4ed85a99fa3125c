package main

import "github.com/fpgatools/xsboard/cmd/xsload/cmd"

func main() {
	cmd.Execute()
}
