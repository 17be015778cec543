package main

import (
	"os"
)

func main() {
	if err := execute(os.Stdout); err != nil {
		os.Exit(1)
	}
}
