package main

import "github.com/mcoot/topicrooms/internal/cli"

func main() {
	cli.Execute()
}
