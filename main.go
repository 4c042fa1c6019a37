// The main package for the apklist executable.
package main

import "github.com/apklist/apklist/cmd"

func main() {
	cmd.Execute()
}
