package main

import "github.com/javanhut/savepoint/cli"

func main() {
	cli.Execute()
}
