package main

import "github.com/RanaTayyab/osu-api-manager/cmd"

func main() {
	cmd.Execute()
}
