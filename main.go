/*
Copyright © 2024 Dean
*/
package main

import "qamentor/cmd"

func main() {
	cmd.Execute()
}
