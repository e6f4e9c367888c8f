package main

import "github.com/nutrilog/foodvision/cli"

func main() {
	cli.Execute()
}
