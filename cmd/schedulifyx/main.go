package main

import "github.com/noah-isme/schedulifyx-api/internal/cli"

func main() {
	cli.Execute()
}
