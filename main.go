package main

import (
	"fmt"

	"github.com/sweeplab/minesweeper-live/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
