package main

import "github.com/KaramelBytes/kpiscope/cmd"

func main() {
	cmd.Execute()
}
