package main

import (
	"fmt"
	"os"

	"github.com/zeu5/fights/commands"
)

// main entry point to the server and the experiments
func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
