package main

import "github.com/raphaelguye/srrc-calendar-scraper/internal/cli"

func main() {
	cli.Execute()
}
