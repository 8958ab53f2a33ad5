package main

import (
	"flag"

	"MiniBase/bootstrap"

	"github.com/phuslu/log"
)

func main() {
	flag.Parse()
	if _, err := bootstrap.Run(); err != nil {
		log.Fatal().Err(err).Msg("minibase stopped")
	}
}
