package main

import "github.com/corvus-crawler/corvus/internal/cmd"

func main() {
	cmd.Execute()
}
