// Command videocatalog serves the in-memory user and video registry over HTTP.
package main

import (
	"github.com/patric-chuzhbe/videocatalog/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		panic(err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		panic(err)
	}
}
