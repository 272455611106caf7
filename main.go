package main

import "github.com/shouni/long-text-summary-go/cmd"

func main() {
	cmd.Execute()
}
