package main

import "github.com/pakohler/leeroy/cli"

func main() {
	cli.Execute()
}
