package main

import "github.com/MeKo-Tech/nutrilabel/cmd/nutrilabel/cmd"

func main() {
	cmd.Execute()
}
