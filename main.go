package main

import (
	"os"

	"github.com/dataspace-exchange/dataspace-backend/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
