package main

import "bill-reconciler/cmd"

func main() {
	cmd.Execute()
}
