package main

import "cmcs/internal/app/server"

func main() {
	server.Run()
}
