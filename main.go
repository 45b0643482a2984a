package main

import "github.com/ridoystarlord/custompost/cmd"

func main() {
	cmd.Execute()
}
