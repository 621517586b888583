// The main package for the queryaudit executable.
package main

import "github.com/serptools/queryaudit/cmd"

func main() {
	cmd.Execute()
}
