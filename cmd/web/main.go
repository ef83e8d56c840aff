package main

import "foodgram_backend/internal/app"

func main() {
	app.Run()
}
