package main

import "github.com/KaramelBytes/cladeloom/cmd"

func main() {
	cmd.Execute()
}
