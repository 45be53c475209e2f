package main

import "github.com/Mohsinsiddi/abistudio/cmd"

func main() {
	cmd.Execute()
}
