package main

import "github.com/jmehdipour/insights-gateway/cmd"

func main() {
	cmd.Execute()
}
