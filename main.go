package main

import (
	"fmt"

	"github.com/liftops/lift-telemetry-service/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
