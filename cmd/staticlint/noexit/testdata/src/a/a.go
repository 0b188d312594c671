package main

import (
	"log"
	"os"
)

func cleanup() {}

func fail() {
	log.Fatalf("boom: %d", 1) // want `log.Fatalf skips deferred cleanup in package main`
}

func main() {
	defer cleanup()

	if len(os.Args) > 3 {
		fail()
	}
	if len(os.Args) > 2 {
		log.Fatal("too many arguments") // want `log.Fatal skips deferred cleanup in package main`
	}
	if len(os.Args) > 1 {
		os.Exit(2) // want `os.Exit skips deferred cleanup in package main`
	}

	log.Println("fine")
	panic("also fine")
}
