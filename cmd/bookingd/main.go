package main

import "github.com/talasbekov/rental-project-sub000/cmd"

func main() {
	cmd.Execute()
}
