package main

import "github.com/loopnorth/ms-go-checkout/cmd"

func main() {
	cmd.Execute()
}
