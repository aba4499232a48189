package main

import (
	"context"
	"log"

	"github.com/shepherdhq/memberd/internal/server"
	"github.com/shepherdhq/memberd/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
