package main

import "github.com/shaharia-lab/mailbatch/cmd"

func main() {
	cmd.Execute()
}
