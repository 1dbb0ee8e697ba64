package main

import "github.com/shaharia-lab/notifier/cmd"

func main() {
	cmd.Execute()
}
