package main

import "github.com/fitdesk/gymadmin/cmd/gymadmin/cmd"

func main() {
	cmd.Execute()
}
