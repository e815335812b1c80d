package main

import "dataprof/cmd/dataprof/cli"

func main() {
	cli.Execute()
}
