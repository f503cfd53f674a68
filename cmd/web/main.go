package main

import "agrodocs_backend/internal/app"

func main() {
	app.Run()
}
