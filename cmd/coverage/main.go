package main

import "github.com/facilityops/facility-ops/internal/cli"

func main() {
	cli.Execute()
}
