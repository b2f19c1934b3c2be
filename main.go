package main

import "github.com/theirongolddev/proforma/cmd"

func main() {
	cmd.Execute()
}
