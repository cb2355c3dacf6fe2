package main

import "github.com/srcsintheta/timetracker/cmd"

func main() {
	cmd.Execute()
}
