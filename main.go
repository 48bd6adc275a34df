package main

import "github.com/vibast-solutions/ms-go-idmatch/cmd"

func main() {
	cmd.Execute()
}
