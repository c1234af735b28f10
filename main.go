package main

import (
	"os"

	"github.com/ToonStack-Admin/ToonStack-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
