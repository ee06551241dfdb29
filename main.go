package main

import (
	"log"

	"orion-chatbot/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
